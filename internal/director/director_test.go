package director

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/overlay"
)

type fakeLoader map[string]image.Image

func (f fakeLoader) Load(_ context.Context, ref string) (image.Image, error) {
	if img, ok := f[ref]; ok {
		return img, nil
	}
	return nil, errors.New("missing " + ref)
}

// busyTop has stripes in the upper two thirds and a flat bottom.
func busyTop() image.Image {
	img := image.NewGray(image.Rect(0, 0, 90, 90))
	draw.Draw(img, img.Rect, image.NewUniform(color.Gray{128}), image.Point{}, draw.Src)
	for y := 0; y < 60; y++ {
		for x := 0; x < 90; x += 6 {
			img.SetGray(x, y, color.Gray{255})
			img.SetGray(x+1, y, color.Gray{255})
		}
	}
	return img
}

func TestDraftResolvesAutoPosition(t *testing.T) {
	loader := fakeLoader{"a.png": busyTop(), "b.png": busyTop()}
	base := &overlay.EditState{Text: "Sale", Position: overlay.Auto}

	sb, err := NewDirector().Draft(context.Background(), loader, "Осень", []string{"a.png", "b.png"}, base, 0, 30, 20)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if len(sb.Slides) != 2 {
		t.Fatalf("Expected 2 slides, got %d", len(sb.Slides))
	}
	for i, sl := range sb.Slides {
		if sl.Edit == nil || sl.Edit.Position != overlay.Bottom {
			t.Errorf("slide %d edit = %+v, want bottom text", i, sl.Edit)
		}
	}
	if sb.Slides[0].Title != "a" {
		t.Errorf("title = %q", sb.Slides[0].Title)
	}
	if sb.Plan.SlideDuration != nil {
		t.Error("slide duration should stay unset without a target length")
	}
	if base.Position != overlay.Auto {
		t.Error("base edit state was modified")
	}
}

func TestDraftPacesByDetail(t *testing.T) {
	flat := image.NewGray(image.Rect(0, 0, 200, 200))
	busy := image.NewGray(image.Rect(0, 0, 200, 200))
	for _, r := range []image.Rectangle{
		image.Rect(10, 10, 60, 60), image.Rect(140, 10, 190, 60),
		image.Rect(10, 140, 60, 190), image.Rect(140, 140, 190, 190),
	} {
		draw.Draw(busy, r, image.NewUniform(color.Gray{255}), image.Point{}, draw.Src)
	}

	d := NewDirector()
	d.BlockDwell = 2

	sb, err := d.Draft(context.Background(), fakeLoader{"flat.png": flat}, "", []string{"flat.png"}, nil, 0, 30, 20)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Plan.SlideDuration == nil || *sb.Plan.SlideDuration != d.MinDwell {
		t.Errorf("flat slide duration = %v, want %v", sb.Plan.SlideDuration, d.MinDwell)
	}

	sb, err = d.Draft(context.Background(), fakeLoader{"busy.png": busy}, "", []string{"busy.png"}, nil, 0, 30, 20)
	if err != nil {
		t.Fatal(err)
	}
	if sb.Plan.SlideDuration == nil || *sb.Plan.SlideDuration <= d.MinDwell {
		t.Errorf("busy slide duration = %v, want more than %v", sb.Plan.SlideDuration, d.MinDwell)
	}

	// A target length wins over pacing.
	sb, err = d.Draft(context.Background(), fakeLoader{}, "", []string{"busy.png"}, nil, 3, 30, 20)
	if err != nil {
		t.Fatal(err)
	}
	if *sb.Plan.SlideDuration != 3 {
		t.Errorf("duration = %v, want 3", *sb.Plan.SlideDuration)
	}
}

func TestReadingTime(t *testing.T) {
	d := NewDirector()
	d.BlockDwell = 0.75
	if got := d.readingTime([]int{2, 4}); got != 2.25 {
		t.Errorf("readingTime = %v, want 2.25", got)
	}
	if got := d.readingTime([]int{0}); got != d.MinDwell {
		t.Errorf("readingTime = %v, want %v", got, d.MinDwell)
	}
	if got := d.readingTime([]int{40}); got != d.MaxDwell {
		t.Errorf("readingTime = %v, want %v", got, d.MaxDwell)
	}
}

func TestDraftLoadFailure(t *testing.T) {
	base := &overlay.EditState{Position: overlay.Auto}
	if _, err := NewDirector().Draft(context.Background(), fakeLoader{}, "", []string{"gone.png"}, base, 0, 30, 20); err == nil {
		t.Error("expected load error")
	}
}

func TestCalculateDwellTime(t *testing.T) {
	d := NewDirector()
	// 3 slides, 2 fades of 20/30 s: (12 - 4/3) / 3 = 3.56
	if got := d.calculateDwellTime(12, 3, 30, 20); got != 3.56 {
		t.Errorf("dwell = %v, want 3.56", got)
	}
	if got := d.calculateDwellTime(1, 5, 30, 20); got != d.MinDwell {
		t.Errorf("dwell = %v, want clamp to %v", got, d.MinDwell)
	}
	if got := d.calculateDwellTime(600, 2, 30, 20); got != d.MaxDwell {
		t.Errorf("dwell = %v, want clamp to %v", got, d.MaxDwell)
	}
}

func TestStoryboardWriteRead(t *testing.T) {
	zero := 0.0
	sb := &Storyboard{
		Title: "Осенняя коллекция",
		Plan:  PlanSpec{SlideDuration: &zero, Audio: "lofi", Aspect: "1:1"},
		Slides: []Slide{
			{Image: "a.png", Edit: &overlay.EditState{Text: "NEW", Style: overlay.Magazine}},
			{Image: "deck.pdf#page=2"},
		},
	}

	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := WriteStoryboard(sb, path); err != nil {
		t.Fatalf("WriteStoryboard failed: %v", err)
	}
	got, err := ReadStoryboard(path)
	if err != nil {
		t.Fatalf("ReadStoryboard failed: %v", err)
	}

	if got.Version != StoryboardVersion {
		t.Errorf("Version = %q", got.Version)
	}
	if got.Plan.SlideDuration == nil || *got.Plan.SlideDuration != 0 {
		t.Errorf("static slide duration lost: %v", got.Plan.SlideDuration)
	}
	refs := got.Refs()
	if len(refs) != 2 || refs[1] != "deck.pdf#page=2" {
		t.Errorf("Refs = %v", refs)
	}
	edits := got.Edits()
	if len(edits) != 1 || edits["a.png"].Style != overlay.Magazine {
		t.Errorf("Edits = %v", edits)
	}
}

func TestReadStoryboardRejectsBadEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "version: \"1.0\"\nslides:\n  - image: a.png\n    edit:\n      sticker: heart\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadStoryboard(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestPlanSpecApply(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 720, 1280
	zero := 0.0
	PlanSpec{SlideDuration: &zero, Audio: "pulse", Aspect: "1:1"}.Apply(cfg)

	if !cfg.Static() {
		t.Error("expected static slideshow")
	}
	if cfg.AudioStyle != "pulse" || cfg.Aspect != "1:1" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Width != 0 || cfg.Height != 0 {
		t.Error("size should be cleared for ResolveSize")
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	p := Presets{
		"sale":  {Text: "SALE", Sticker: overlay.Sale, Dim: 0.3},
		"clean": {Filter: "noir"},
	}
	if err := WritePresets(p, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPresets(path)
	if err != nil {
		t.Fatal(err)
	}
	if names := got.Names(); len(names) != 2 || names[0] != "clean" {
		t.Errorf("Names = %v", names)
	}
	if got["sale"].Sticker != overlay.Sale || got["sale"].Dim != 0.3 {
		t.Errorf("sale = %+v", got["sale"])
	}
}

func TestEditingLoader(t *testing.T) {
	white := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(white, white.Rect, image.White, image.Point{}, draw.Src)
	l := &EditingLoader{
		Base:   fakeLoader{"a": white, "b": white},
		Engine: overlay.NewEngine(),
		Edits:  map[string]*overlay.EditState{"a": {Dim: 0.5}},
	}

	a, err := l.Load(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := a.At(5, 5).RGBA(); r>>8 > 140 {
		t.Errorf("edited slide not dimmed: %d", r>>8)
	}
	b, _ := l.Load(context.Background(), "b")
	if b != image.Image(white) {
		t.Error("slide without edit should pass through")
	}
}

func TestFindLatestStoryboard(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "storyboard_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "storyboard_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "storyboard_2026-02-11_15-30-00.yml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("slides: []"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}

	latest, err := FindLatestStoryboard(dir)
	if err != nil {
		t.Fatalf("FindLatestStoryboard failed: %v", err)
	}
	if latest != files[2] {
		t.Errorf("Expected latest to be %s, got %s", files[2], latest)
	}

	if p := GenerateStoryboardPath(dir); filepath.Dir(p) != dir || !IsStoryboard(p) {
		t.Errorf("GenerateStoryboardPath = %s", p)
	}
}
