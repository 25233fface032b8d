package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

const (
	stickerSize  = 0.25
	stickerInset = 0.1
	stickerTilt  = -math.Pi / 10
	bestStroke   = 5.0
)

type badge struct {
	label      string
	labelSize  float64
	labelColor color.NRGBA
	paint      func(layer *image.NRGBA, c, s float64)
}

var badges = map[Sticker]badge{
	Sale: {"SALE", 0.4, color.NRGBA{255, 255, 255, 255}, func(l *image.NRGBA, c, s float64) {
		fillColor(l, hexColor("#e53e3e"), func(z *vector.Rasterizer) { circle(z, c, c, s/2) })
	}},
	New: {"NEW", 0.35, color.NRGBA{255, 255, 255, 255}, func(l *image.NRGBA, c, s float64) {
		fillColor(l, hexColor("#48bb78"), func(z *vector.Rasterizer) { roundRect(z, c-s/2, c-s/4, s, s/2, 10) })
	}},
	Hit: {"HIT", 0.3, color.NRGBA{0, 0, 0, 255}, func(l *image.NRGBA, c, s float64) {
		fillColor(l, hexColor("#d69e2e"), func(z *vector.Rasterizer) { star(z, c, c, s/2, s/4, 5) })
	}},
	Best: {"BEST", 0.3, hexColor("#d4af37"), func(l *image.NRGBA, c, s float64) {
		// A gold stroke centred on the edge of a black rounded square.
		h := bestStroke / 2
		fillColor(l, hexColor("#d4af37"), func(z *vector.Rasterizer) { roundRect(z, c-s/2-h, c-s/2-h, s+2*h, s+2*h, 100+h) })
		fillColor(l, color.NRGBA{A: 255}, func(z *vector.Rasterizer) { roundRect(z, c-s/2+h, c-s/2+h, s-2*h, s-2*h, 100-h) })
	}},
}

// drawSticker stamps a tilted badge whose unrotated box sits 10% in from the
// top-left corner and spans a quarter of the width.
func drawSticker(dst *image.RGBA, kind Sticker) error {
	bg, ok := badges[kind]
	if !ok {
		return nil
	}
	b := dst.Bounds()
	W, H := float64(b.Dx()), float64(b.Dy())
	s := W * stickerSize
	cx := float64(b.Min.X) + W*stickerInset + s/2
	cy := float64(b.Min.Y) + H*stickerInset + s/2

	side := int(math.Ceil(s+2*bestStroke)) + 2
	layer := image.NewNRGBA(image.Rect(0, 0, side, side))
	c := float64(side) / 2
	bg.paint(layer, c, s)

	face, err := newFace(faceBold, s*bg.labelSize)
	if err != nil {
		return err
	}
	defer face.Close()
	label := textLayer(face, bg.label, bg.labelColor, color.NRGBA{}, 0)
	lb := label.Bounds()
	at := image.Pt(int(math.Round(c-float64(lb.Dx())/2)), int(math.Round(c-float64(lb.Dy())/2)))
	draw.Draw(layer, lb.Add(at), label, image.Point{}, draw.Over)

	placeRotated(dst, layer, cx, cy, stickerTilt)
	return nil
}

// placeRotated draws src rotated by angle around its centre, with that centre
// landing on (cx, cy).
func placeRotated(dst draw.Image, src image.Image, cx, cy, angle float64) {
	sb := src.Bounds()
	ox := float64(sb.Min.X) + float64(sb.Dx())/2
	oy := float64(sb.Min.Y) + float64(sb.Dy())/2
	cos, sin := math.Cos(angle), math.Sin(angle)
	m := f64.Aff3{
		cos, -sin, cx - (cos*ox - sin*oy),
		sin, cos, cy - (sin*ox + cos*oy),
	}
	xdraw.BiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
}
