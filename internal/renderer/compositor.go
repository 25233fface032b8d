// Package renderer draws slideshow frames onto RGBA canvases.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type FitMode string

const (
	Cover   FitMode = "cover"
	Contain FitMode = "contain"
)

func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(s) {
	case "", "cover":
		return Cover, nil
	case "contain":
		return Contain, nil
	}
	return "", fmt.Errorf("unknown fit mode %q (cover, contain)", s)
}

const (
	backdropOverscan = 1.1
	backdropDim      = 0.6
	foregroundInset  = 0.9
	shadowOffsetY    = 10
	shadowOpacity    = 0.5
	// Backdrop and shadow are blurred at 1/lowRes of the frame size.
	lowRes     = 4
	blurSigma  = 20.0 / lowRes
	shadowPad  = 3 * blurSigma
)

// Compositor draws one image per call onto a Width x Height canvas.
// It keeps no per-draw state; only the contain backdrop and shadow of each
// image are cached, since they do not depend on the frame.
type Compositor struct {
	Width, Height int
	// Interp scales the images. Defaults to ApproxBiLinear.
	Interp xdraw.Interpolator

	mu    sync.Mutex
	cache map[image.Image]*containLayers
}

type containLayers struct {
	backdrop *image.NRGBA
	shadow   *image.NRGBA
}

func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		Width:  width,
		Height: height,
		Interp: xdraw.ApproxBiLinear,
		cache:  make(map[image.Image]*containLayers),
	}
}

// Clear paints dst black.
func (c *Compositor) Clear(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
}

// Release drops cached layers for img, or all of them when img is nil.
func (c *Compositor) Release(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img == nil {
		c.cache = make(map[image.Image]*containLayers)
		return
	}
	delete(c.cache, img)
}

// DrawFrame composites img over dst at the given zoom scale and opacity.
// alpha applies to this call only; alpha >= 1 draws without a mask.
func (c *Compositor) DrawFrame(dst *image.RGBA, img image.Image, scale, alpha float64, fit FitMode) {
	if alpha <= 0 {
		return
	}
	var opts *xdraw.Options
	var mask image.Image
	if alpha < 1 {
		mask = image.NewUniform(color.Alpha16{A: uint16(math.Round(alpha * 0xffff))})
		opts = &xdraw.Options{SrcMask: mask}
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	W, H := float64(c.Width), float64(c.Height)

	switch fit {
	case Contain:
		layers := c.layers(img)
		c.drawScaled(dst, layers.backdrop, 1, 0, 0, opts)

		s := math.Min(W/w, H/h) * foregroundInset * scale
		fw, fh := w*s, h*s

		// The shadow template was built at 1/lowRes for the unzoomed foreground.
		sb := layers.shadow.Bounds()
		ss := lowRes * scale
		sx := (W - float64(sb.Dx())*ss) / 2
		sy := (H-float64(sb.Dy())*ss)/2 + shadowOffsetY
		c.drawScaled(dst, layers.shadow, ss, sx, sy, opts)

		c.drawScaled(dst, img, s, (W-fw)/2, (H-fh)/2, opts)
	default:
		if mask != nil {
			draw.DrawMask(dst, dst.Bounds(), image.Black, image.Point{}, mask, image.Point{}, draw.Over)
		}
		s := math.Max(W/w, H/h) * scale
		c.drawScaled(dst, img, s, (W-w*s)/2, (H-h*s)/2, opts)
	}
}

// drawScaled maps src uniformly scaled by s with its top-left corner at (x, y).
func (c *Compositor) drawScaled(dst *image.RGBA, src image.Image, s, x, y float64, opts *xdraw.Options) {
	b := src.Bounds()
	m := f64.Aff3{
		s, 0, x - s*float64(b.Min.X),
		0, s, y - s*float64(b.Min.Y),
	}
	interp := c.Interp
	if interp == nil {
		interp = xdraw.ApproxBiLinear
	}
	interp.Transform(dst, m, src, b, xdraw.Over, opts)
}

func (c *Compositor) layers(img image.Image) *containLayers {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil {
		c.cache = make(map[image.Image]*containLayers)
	}
	if l, ok := c.cache[img]; ok {
		return l
	}
	l := &containLayers{
		backdrop: c.buildBackdrop(img),
		shadow:   c.buildShadow(img),
	}
	c.cache[img] = l
	return l
}

// buildBackdrop fills the frame with the image at 110% of the cover scale,
// blurred and dimmed.
func (c *Compositor) buildBackdrop(img image.Image) *image.NRGBA {
	lw, lh := max(1, c.Width/lowRes), max(1, c.Height/lowRes)
	small := image.NewRGBA(image.Rect(0, 0, lw, lh))
	draw.Draw(small, small.Bounds(), image.Black, image.Point{}, draw.Src)

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	s := math.Max(float64(lw)/w, float64(lh)/h) * backdropOverscan
	xdraw.ApproxBiLinear.Transform(small, f64.Aff3{
		s, 0, (float64(lw)-w*s)/2 - s*float64(b.Min.X),
		0, s, (float64(lh)-h*s)/2 - s*float64(b.Min.Y),
	}, img, b, xdraw.Over, nil)

	blurred := imaging.Blur(small, blurSigma)
	dimmed := imaging.AdjustFunc(blurred, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: uint8(float64(px.R) * backdropDim),
			G: uint8(float64(px.G) * backdropDim),
			B: uint8(float64(px.B) * backdropDim),
			A: 255,
		}
	})
	return imaging.Resize(dimmed, c.Width, c.Height, imaging.Linear)
}

// buildShadow returns a soft black rectangle the size of the unzoomed
// foreground, at 1/lowRes resolution with room for the blur.
func (c *Compositor) buildShadow(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	s := math.Min(float64(c.Width)/w, float64(c.Height)/h) * foregroundInset / lowRes
	pad := int(math.Ceil(shadowPad))
	rw, rh := max(1, int(math.Round(w*s))), max(1, int(math.Round(h*s)))

	shape := image.NewNRGBA(image.Rect(0, 0, rw+2*pad, rh+2*pad))
	fill := image.NewUniform(color.NRGBA{A: uint8(math.Round(255 * shadowOpacity))})
	draw.Draw(shape, image.Rect(pad, pad, pad+rw, pad+rh), fill, image.Point{}, draw.Src)
	return imaging.Blur(shape, blurSigma)
}
