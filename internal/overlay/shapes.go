package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/ivlev/pinstudio/internal/renderer"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// fillPath rasterizes a path built on a rasterizer the size of dst and
// composites src through it.
func fillPath(dst draw.Image, src image.Image, build func(z *vector.Rasterizer)) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	build(z)
	z.Draw(dst, b, src, image.Point{})
}

func fillColor(dst draw.Image, c color.Color, build func(z *vector.Rasterizer)) {
	fillPath(dst, image.NewUniform(c), build)
}

// roundRect adds a rounded rectangle. The radius is clamped to half of the
// shorter side, so a large radius on a square makes a circle.
func roundRect(z *vector.Rasterizer, x, y, w, h, r float64) {
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	k := r * kappa
	p := func(v float64) float32 { return float32(v) }

	z.MoveTo(p(x+r), p(y))
	z.LineTo(p(x+w-r), p(y))
	z.CubeTo(p(x+w-r+k), p(y), p(x+w), p(y+r-k), p(x+w), p(y+r))
	z.LineTo(p(x+w), p(y+h-r))
	z.CubeTo(p(x+w), p(y+h-r+k), p(x+w-r+k), p(y+h), p(x+w-r), p(y+h))
	z.LineTo(p(x+r), p(y+h))
	z.CubeTo(p(x+r-k), p(y+h), p(x), p(y+h-r+k), p(x), p(y+h-r))
	z.LineTo(p(x), p(y+r))
	z.CubeTo(p(x), p(y+r-k), p(x+r-k), p(y), p(x+r), p(y))
	z.ClosePath()
}

func circle(z *vector.Rasterizer, cx, cy, r float64) {
	roundRect(z, cx-r, cy-r, 2*r, 2*r, r)
}

// star adds a star with the first spike pointing up.
func star(z *vector.Rasterizer, cx, cy, outer, inner float64, spikes int) {
	step := math.Pi / float64(spikes)
	rot := 3 * math.Pi / 2
	z.MoveTo(float32(cx), float32(cy-outer))
	for i := 0; i < spikes; i++ {
		z.LineTo(float32(cx+math.Cos(rot)*outer), float32(cy+math.Sin(rot)*outer))
		rot += step
		z.LineTo(float32(cx+math.Cos(rot)*inner), float32(cy+math.Sin(rot)*inner))
		rot += step
	}
	z.ClosePath()
}

func hexColor(s string) color.NRGBA {
	c := color.NRGBA{A: 255}
	fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	return c
}

// gradient is a linear colour ramp between evenly spaced stops along the
// vector (x0,y0)-(x1,y1).
type gradient struct {
	x0, y0, x1, y1 float64
	stops          []color.NRGBA
}

func (g *gradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *gradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *gradient) At(x, y int) color.Color {
	dx, dy := g.x1-g.x0, g.y1-g.y0
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = ((float64(x)+0.5-g.x0)*dx + (float64(y)+0.5-g.y0)*dy) / l2
	}
	t = renderer.Clamp01(t)
	seg := t * float64(len(g.stops)-1)
	i := int(seg)
	if i >= len(g.stops)-1 {
		return g.stops[len(g.stops)-1]
	}
	f := seg - float64(i)
	a, b := g.stops[i], g.stops[i+1]
	mix := func(p, q uint8) uint8 { return uint8(math.Round(renderer.Lerp(float64(p), float64(q), f))) }
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}
