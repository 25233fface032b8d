package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func pngOf(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Осенняя коллекция", 0, "osennyaya-kollektsiya"},
		{"Щука и ёж!", 0, "schuka-i-yozh"},
		{"Summer  SALE -- 2026", 0, "summer-sale-2026"},
		{"Подъезд", 0, "podezd"},
		{"длинное название", 8, "dlinnoe"},
		{"!!!", 0, ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in, tt.limit); got != tt.want {
			t.Errorf("Slug(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = b
	}
	return files
}

func TestPackWrite(t *testing.T) {
	p := &Pack{
		Topic: "Осень",
		Assets: []Asset{
			{Title: "Тёплый шарф", Description: "Мягкий", Tags: []string{"осень", "#шарф"}, PNG: pngOf(4, 4, color.White)},
			{Title: "no image"},
			{Title: "Boots", Link: "https://example.com/boots", PNG: pngOf(4, 4, color.Black)},
		},
		QRLink: "https://example.com",
		Date:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := p.FileName(); got != "osen_PROJECT_PACK.zip" {
		t.Errorf("FileName = %q", got)
	}

	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatal(err)
	}
	files := readZip(t, buf.Bytes())

	for _, name := range []string{"images/tyoplyy-sharf_1.png", "images/boots_2.png", "strategy_plan.txt", "qr.png"} {
		if _, ok := files[name]; !ok {
			t.Errorf("missing %s in %d files", name, len(files))
		}
	}
	plan := string(files["strategy_plan.txt"])
	for _, want := range []string{
		"# PROJECT STRATEGY: ОСЕНЬ",
		"Date: 01.10.2026",
		"[ASSET 1]: Тёплый шарф\nFILE: tyoplyy-sharf_1.png",
		"TAGS: #осень #шарф",
		"LINK: N/A",
		"LINK: https://example.com/boots",
	} {
		if !strings.Contains(plan, want) {
			t.Errorf("plan lacks %q:\n%s", want, plan)
		}
	}
	if !bytes.Equal(files["images/boots_2.png"], p.Assets[2].PNG) {
		t.Error("image without watermark should be stored as is")
	}
}

func TestPackWatermark(t *testing.T) {
	src := pngOf(200, 200, color.Black)
	p := &Pack{Topic: "x", Assets: []Asset{{Title: "a", PNG: src}}, Watermark: "DRAFT"}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got := readZip(t, buf.Bytes())["images/a_1.png"]
	if bytes.Equal(got, src) {
		t.Error("watermark not applied")
	}
	if _, err := png.Decode(bytes.NewReader(got)); err != nil {
		t.Errorf("watermarked image is not a png: %v", err)
	}
}

func TestPackEmpty(t *testing.T) {
	p := &Pack{Topic: "x", Assets: []Asset{{Title: "no image"}}}
	if err := p.Write(io.Discard); !errors.Is(err, ErrEmptyPack) {
		t.Errorf("err = %v, want ErrEmptyPack", err)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Asset{{Title: `Say "hi"`, Description: "a, b", Tags: []string{"x", "y"}}})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "Title" || rows[1][0] != `Say "hi"` || rows[1][3] != "x,y" {
		t.Errorf("rows = %q", rows)
	}
}

func TestQRCode(t *testing.T) {
	data, err := QRCode("https://example.com", 256)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("size = %v", b)
	}
	if _, err := QRCode("", 256); err == nil {
		t.Error("expected error for empty url")
	}
}

type fakePutter struct {
	key, contentType string
	body             []byte
	err              error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = *in.Key
	if in.ContentType != nil {
		f.contentType = *in.ContentType
	}
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestPublish(t *testing.T) {
	fp := &fakePutter{}
	p := NewPublisherWithClient(fp, "media", "pins/2026")
	uri, err := p.Publish(context.Background(), "osen.webm", []byte("video"), "video/webm")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "s3://media/pins/2026/osen.webm" {
		t.Errorf("uri = %q", uri)
	}
	if fp.key != "pins/2026/osen.webm" || fp.contentType != "video/webm" || string(fp.body) != "video" {
		t.Errorf("put = %+v", fp)
	}

	fp.err = errors.New("denied")
	if _, err := p.Publish(context.Background(), "x", nil, ""); err == nil {
		t.Error("expected error")
	}
}
