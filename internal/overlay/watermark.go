package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

const DefaultWatermark = "DRAFT • PINSTUDIO"

// Watermark returns a copy of img with text stamped diagonally across the
// centre and repeated small along the bottom edge.
func Watermark(img image.Image, text string) (*image.RGBA, error) {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	if text == "" {
		return out, nil
	}

	W, H := float64(b.Dx()), float64(b.Dy())
	size := W * 0.06
	fill := color.NRGBA{255, 255, 255, 102}
	shadow := color.NRGBA{A: 128}

	big, err := newFace(faceBold, size)
	if err != nil {
		return nil, err
	}
	defer big.Close()
	placeRotated(out, textLayer(big, text, fill, shadow, 10), W/2, H/2, -math.Pi/4)

	small, err := newFace(faceBold, size*0.5)
	if err != nil {
		return nil, err
	}
	defer small.Close()
	line := textLayer(small, text, fill, shadow, 10)
	lb := line.Bounds()
	at := image.Pt(int(math.Round(W/2-float64(lb.Dx())/2)), int(math.Round(H-size-float64(lb.Dy())/2)))
	draw.Draw(out, lb.Add(at), line, image.Point{}, draw.Over)
	return out, nil
}

// WatermarkPNG stamps text on an encoded PNG.
func WatermarkPNG(data []byte, text string) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	marked, err := Watermark(img, text)
	if err != nil {
		return nil, err
	}
	return EncodePNG(marked)
}
