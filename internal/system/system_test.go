package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseEncoders(t *testing.T) {
	out := `Encoders:
 V..... = Video
 ------
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 V....D libx264              libx264 H.264 / AVC
 A....D aac                  AAC (Advanced Audio Coding)
`
	enc := ParseEncoders(out)
	for _, name := range []string{"libvpx", "libvpx-vp9", "libx264", "aac"} {
		if !enc[name] {
			t.Errorf("encoder %s not found", name)
		}
	}
	if enc["Video"] || enc["="] {
		t.Errorf("header lines parsed as encoders: %v", enc)
	}
}

func TestListImagesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt", "c.JPEG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ListImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.jpg", "b.png", "c.JPEG"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if filepath.Base(got[i]) != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ListImages(t.TempDir()); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	fresh := filepath.Join(dir, "fresh.png")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestImage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != fresh {
		t.Errorf("FindLatestImage = %s, want %s", got, fresh)
	}

	got, err = FindLatestImage(old)
	if err != nil || got != old {
		t.Errorf("file path should be returned as is, got %s, %v", got, err)
	}
}

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 4, 4)
	img := p.Get(rect)
	if img.Rect != rect {
		t.Fatalf("rect = %v, want %v", img.Rect, rect)
	}
	p.Put(img)
	p.Put(nil)

	other := p.Get(image.Rect(0, 0, 2, 2))
	if other.Rect.Dx() != 2 {
		t.Errorf("pool returned wrong size %v", other.Rect)
	}
}

func TestSharedPool(t *testing.T) {
	rect := image.Rect(0, 0, 3, 5)
	img := GetImage(rect)
	if img.Rect != rect {
		t.Fatalf("rect = %v, want %v", img.Rect, rect)
	}
	PutImage(img)
	PutImage(nil)
}
