package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadReferences(t *testing.T) {
	data := pngBytes(t, 3, 2)
	path := filepath.Join(t.TempDir(), "slide.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	refs := map[string]string{
		"path":     path,
		"data url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		"http":     srv.URL + "/pin.png",
	}
	l := NewLoader(72)
	for name, ref := range refs {
		t.Run(name, func(t *testing.T) {
			img, err := l.Load(context.Background(), ref)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}
}

func TestLoadDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	garbage := filepath.Join(t.TempDir(), "broken.png")
	os.WriteFile(garbage, []byte("not an image"), 0o644)

	l := NewLoader(72)
	for _, ref := range []string{"", garbage, "/missing/file.png", "data:image/png;base64,@@@", srv.URL} {
		if _, err := l.Load(context.Background(), ref); !errors.Is(err, ErrDecode) {
			t.Errorf("Load(%q) err = %v, want ErrDecode", Describe(ref), err)
		}
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader(72).Load(ctx, "whatever.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("data:image/png;base64,AAAA"); got != "data:image/png;base64,..." {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe("a.png"); got != "a.png" {
		t.Errorf("Describe = %q", got)
	}
}

func TestExpandDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.png", "1.png"} {
		os.WriteFile(filepath.Join(dir, name), pngBytes(t, 1, 1), 0o644)
	}
	refs, err := Expand(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || filepath.Base(refs[0]) != "1.png" {
		t.Errorf("refs = %v", refs)
	}

	single, err := Expand(refs[1])
	if err != nil || len(single) != 1 {
		t.Errorf("single file: %v, %v", single, err)
	}
}

func TestPageRef(t *testing.T) {
	if got := PageRef("deck.pdf", 0); got != "deck.pdf#page=1" {
		t.Errorf("PageRef = %q", got)
	}
}
