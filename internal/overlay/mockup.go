package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const grainSpecks = 100

// phoneMockup frames content in a rounded dark bezel with a notch and a faint
// glass reflection. The result is larger than content on both axes.
func phoneMockup(content *image.RGBA) *image.RGBA {
	W, H := content.Bounds().Dx(), content.Bounds().Dy()
	border := int(math.Max(1, math.Round(float64(W)*0.05)))
	fw, fh := W+2*border, H+2*border
	bw := float64(border)
	r := bw * 2.5

	out := image.NewRGBA(image.Rect(0, 0, fw, fh))
	fillColor(out, hexColor("#1a1a1a"), func(z *vector.Rasterizer) {
		roundRect(z, 0, 0, float64(fw), float64(fh), r)
	})

	screen := image.NewAlpha(out.Rect)
	fillColor(screen, color.Opaque, func(z *vector.Rasterizer) {
		roundRect(z, bw, bw, float64(W), float64(H), r*0.8)
	})
	dr := image.Rect(border, border, border+W, border+H)
	draw.DrawMask(out, dr, content, content.Bounds().Min, screen, dr.Min, draw.Over)

	notchW, notchH := float64(fw)*0.3, bw*1.5
	fillColor(out, color.NRGBA{A: 255}, func(z *vector.Rasterizer) {
		roundRect(z, (float64(fw)-notchW)/2, bw, notchW, notchH, 20)
	})

	glass := &gradient{x0: 0, y0: 0, x1: float64(fw), y1: float64(fh), stops: []color.NRGBA{
		{255, 255, 255, 26}, {255, 255, 255, 0}, {255, 255, 255, 13},
	}}
	fillPath(out, glass, func(z *vector.Rasterizer) {
		roundRect(z, 0, 0, float64(fw), float64(fh), r)
	})
	return out
}

// polaroidMockup puts content on off-white card stock with a wide bottom
// margin and a typewriter caption.
func polaroidMockup(content *image.RGBA, caption string, seed int64) (*image.RGBA, error) {
	W, H := content.Bounds().Dx(), content.Bounds().Dy()
	pad := int(math.Round(float64(W) * 0.1))
	padBottom := int(math.Round(float64(W) * 0.3))
	fw, fh := W+2*pad, H+pad+padBottom

	out := image.NewRGBA(image.Rect(0, 0, fw, fh))
	draw.Draw(out, out.Rect, image.NewUniform(hexColor("#fdfdfd")), image.Point{}, draw.Src)

	speck := image.NewUniform(color.NRGBA{A: 5})
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < grainSpecks; i++ {
		x, y := rng.Intn(fw), rng.Intn(fh)
		draw.Draw(out, image.Rect(x, y, x+2, y+2), speck, image.Point{}, draw.Over)
	}

	draw.Draw(out, image.Rect(pad, pad, pad+W, pad+H), content, content.Bounds().Min, draw.Over)

	if caption != "" {
		face, err := newFace(faceMono, float64(fw)*0.05)
		if err != nil {
			return nil, err
		}
		defer face.Close()
		d := font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(hexColor("#333333")),
			Face: face,
			Dot: fixed.Point26_6{
				X: f2fix(float64(fw)/2 - measure(face, caption)/2),
				Y: f2fix(float64(fh) - float64(padBottom)/2),
			},
		}
		d.DrawString(caption)
	}
	return out, nil
}

// browserMockup adds a window title bar with traffic-light buttons and an
// address field above content.
func browserMockup(content *image.RGBA) *image.RGBA {
	W, H := content.Bounds().Dx(), content.Bounds().Dy()
	header := int(math.Max(4, math.Round(float64(W)*0.08)))
	out := image.NewRGBA(image.Rect(0, 0, W, H+header))
	draw.Draw(out, image.Rect(0, 0, W, header), image.NewUniform(hexColor("#e5e5e5")), image.Point{}, draw.Src)

	h := float64(header)
	dotR, dotY, startX := h*0.25, h/2, h*0.5
	for i, c := range []string{"#ff5f56", "#ffbd2e", "#27c93f"} {
		x := startX + dotR*3*float64(i)
		fillColor(out, hexColor(c), func(z *vector.Rasterizer) { circle(z, x, dotY, dotR) })
	}
	fillColor(out, color.NRGBA{255, 255, 255, 255}, func(z *vector.Rasterizer) {
		roundRect(z, startX+dotR*9, h*0.2, float64(W)*0.6, h*0.6, 5)
	})

	draw.Draw(out, image.Rect(0, header, W, header+H), content, content.Bounds().Min, draw.Src)
	return out
}
