// Package overlay applies still edits: colour filters, dimming, captions,
// stickers and device mockups.
package overlay

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pinstudio/internal/analyzer"
)

const DefaultCaption = "pinstudio collection"

var anchors = map[TextPosition]float64{
	Top:    0.15,
	Mid:    0.5,
	Bottom: 0.85,
}

// ImageLoader resolves a reference into pixels.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Result of editing one reference. On failure Ref is the input reference and
// Fallback is set.
type Result struct {
	Ref      string
	PNG      []byte
	Fallback bool
	Err      error
}

type Engine struct {
	// Caption printed under polaroid mockups.
	Caption  string
	Detector *analyzer.ContrastDetector
	// GrainSeed makes the polaroid paper texture repeatable.
	GrainSeed int64
}

func NewEngine() *Engine {
	return &Engine{
		Caption:   DefaultCaption,
		Detector:  analyzer.NewContrastDetector(),
		GrainSeed: 1,
	}
}

// Apply renders st on top of src. Layers go in a fixed order: filter, dim,
// sticker, text, mockup.
func (e *Engine) Apply(src image.Image, st EditState) (*image.RGBA, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	st = st.Normalize()

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("overlay: empty image")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Rect, st.Filter.Apply(src), image.Point{}, draw.Src)

	if st.Dim > 0 {
		shade := color.NRGBA{A: uint8(math.Round(st.Dim * 255))}
		draw.Draw(canvas, canvas.Rect, image.NewUniform(shade), image.Point{}, draw.Over)
	}

	if st.Sticker != NoSticker {
		if err := drawSticker(canvas, st.Sticker); err != nil {
			return nil, err
		}
	}

	if st.Text != "" || st.SubText != "" {
		pos := st.Position
		if pos == Auto {
			pos = e.calmest(src)
		}
		W, H := float64(b.Dx()), float64(b.Dy())
		y := anchors[pos] * H
		size := W * st.FontSizePercent / 100
		if st.Text != "" {
			bottom, err := drawTextBlock(canvas, st.Text, y, size, st.Style, false)
			if err != nil {
				return nil, err
			}
			y = bottom + size*subTextGap
		}
		if st.SubText != "" {
			if _, err := drawTextBlock(canvas, st.SubText, y, size*subTextRatio, st.Style, true); err != nil {
				return nil, err
			}
		}
	}

	switch st.Mockup {
	case Phone:
		return phoneMockup(canvas), nil
	case Polaroid:
		return polaroidMockup(canvas, e.Caption, e.GrainSeed)
	case Browser:
		return browserMockup(canvas), nil
	}
	return canvas, nil
}

func (e *Engine) calmest(img image.Image) TextPosition {
	if e.Detector == nil {
		return Bottom
	}
	switch e.Detector.CalmestBand(img) {
	case analyzer.Top:
		return Top
	case analyzer.Middle:
		return Mid
	}
	return Bottom
}

// ApplyRef loads ref, edits it and returns the result as a PNG data URL.
// Any failure leaves the reference untouched.
func (e *Engine) ApplyRef(ctx context.Context, loader ImageLoader, ref string, st EditState) Result {
	fallback := func(err error) Result {
		log.Printf("[!] Не удалось обработать %s: %v", ref, err)
		return Result{Ref: ref, Fallback: true, Err: err}
	}

	img, err := loader.Load(ctx, ref)
	if err != nil {
		return fallback(err)
	}
	out, err := e.Apply(img, st)
	if err != nil {
		return fallback(err)
	}
	data, err := EncodePNG(out)
	if err != nil {
		return fallback(err)
	}
	return Result{Ref: DataURL("image/png", data), PNG: data}
}

// Reapply edits pin from its pristine Original, so repeated edits never
// stack. Current and Edit are updated only on success.
func (e *Engine) Reapply(ctx context.Context, loader ImageLoader, pin *Pin, st EditState) Result {
	if pin.Original == "" {
		pin.Original = pin.Current
	}
	res := e.ApplyRef(ctx, loader, pin.Original, st)
	if !res.Fallback {
		pin.Current = res.Ref
		applied := st.Normalize()
		pin.Edit = &applied
	}
	return res
}

// ApplyAll reapplies st to every pin with at most workers edits in flight.
// Results are in pin order.
func (e *Engine) ApplyAll(ctx context.Context, loader ImageLoader, pins []*Pin, st EditState, workers int) []Result {
	results := make([]Result, len(pins))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, pin := range pins {
		g.Go(func() error {
			results[i] = e.Reapply(ctx, loader, pin, st)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
