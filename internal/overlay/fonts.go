package overlay

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type typeface int

const (
	faceBold typeface = iota
	faceMedium
	faceRegular
	faceMono
)

var (
	fontsOnce sync.Once
	fonts     map[typeface]*opentype.Font
	fontsErr  error
)

func loadFonts() {
	fonts = make(map[typeface]*opentype.Font)
	for tf, ttf := range map[typeface][]byte{
		faceBold:    gobold.TTF,
		faceMedium:  gomedium.TTF,
		faceRegular: goregular.TTF,
		faceMono:    gomono.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse font: %w", err)
			return
		}
		fonts[tf] = f
	}
}

// newFace returns a face sized in pixels.
func newFace(tf typeface, size float64) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	if size < 1 {
		size = 1
	}
	return opentype.NewFace(fonts[tf], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func measure(face font.Face, s string) float64 {
	return fix2f(font.MeasureString(face, s))
}

// middleBaseline converts a vertical centre into a baseline, like a canvas
// with textBaseline "middle".
func middleBaseline(face font.Face, cy float64) float64 {
	m := face.Metrics()
	return cy + (fix2f(m.Ascent)-fix2f(m.Descent))/2
}

func fix2f(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func f2fix(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
