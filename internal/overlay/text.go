package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	wrapRatio       = 0.9
	lineHeightRatio = 1.2
	subTextRatio    = 0.6
	subTextGap      = 0.5
)

// textRecipe is how one TextStyle paints its lines.
type textRecipe struct {
	face typeface
	// shadowBlur is the shadow blur radius as a fraction of the font size.
	shadowBlur float64
	shadow     color.NRGBA
	glowPasses int
	gold       bool
	band       bool
}

var recipes = map[TextStyle]textRecipe{
	Luxury:   {face: faceMedium, shadowBlur: 0.4, shadow: color.NRGBA{A: 230}, gold: true},
	Neon:     {face: faceBold, shadowBlur: 0.8, shadow: color.NRGBA{G: 255, B: 255, A: 255}, glowPasses: 2},
	Magazine: {face: faceBold, band: true},
	Bold:     {face: faceBold, shadowBlur: 0.5, shadow: color.NRGBA{A: 204}},
	Minimal:  {face: faceRegular, shadowBlur: 0.25, shadow: color.NRGBA{A: 128}},
}

var goldStops = []color.NRGBA{hexColor("#fcf6ba"), hexColor("#bf953f"), hexColor("#fcf6ba")}

// WrapText fills lines greedily up to maxWidth. A line is only broken between
// words, so a single word wider than maxWidth ends up alone on its own line.
func WrapText(face font.Face, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := ""
	for n, w := range words {
		test := line + w + " "
		if n > 0 && measure(face, test) > maxWidth {
			lines = append(lines, strings.TrimSpace(line))
			line = w + " "
			continue
		}
		line = test
	}
	return append(lines, strings.TrimSpace(line))
}

// textBlock is the layout of wrapped lines around an anchor.
type textBlock struct {
	lines      []string
	lineHeight float64
	firstY     float64 // centre of the first line
}

// layoutBlock wraps text and centres the block on anchorY. A hanging block
// starts at anchorY instead and grows downwards.
func layoutBlock(face font.Face, text string, anchorY, size, width float64, hang bool) textBlock {
	lines := WrapText(face, text, width*wrapRatio)
	lh := size * lineHeightRatio
	if hang {
		return textBlock{lines: lines, lineHeight: lh, firstY: anchorY + lh/2}
	}
	total := float64(len(lines)) * lh
	return textBlock{lines: lines, lineHeight: lh, firstY: anchorY - total/2 + lh/2}
}

func (b textBlock) height() float64 {
	return float64(len(b.lines)) * b.lineHeight
}

func (b textBlock) top() float64 {
	return b.firstY - b.lineHeight/2
}

func (b textBlock) bottom() float64 {
	return b.top() + b.height()
}

// bandRect is the magazine strip behind a block: full width, half a font
// size of padding split above and below.
func (b textBlock) bandRect(width int, size float64) image.Rectangle {
	pad := size * 0.5
	top := b.top() - pad/2
	return image.Rect(0, int(math.Round(top)), width, int(math.Round(top+b.height()+pad)))
}

// drawTextBlock renders text centred horizontally in the given style and
// returns the bottom edge of the block. Main text is centred on anchorY. Sub
// text (sub) hangs below anchorY and gets the grey magazine band.
func drawTextBlock(dst *image.RGBA, text string, anchorY, size float64, style TextStyle, sub bool) (float64, error) {
	rc, ok := recipes[style]
	if !ok {
		rc = recipes[Bold]
	}
	face, err := newFace(rc.face, size)
	if err != nil {
		return anchorY, err
	}
	defer face.Close()

	bounds := dst.Bounds()
	W := float64(bounds.Dx())
	block := layoutBlock(face, text, anchorY, size, W, sub)
	if len(block.lines) == 0 {
		return anchorY, nil
	}

	if rc.band {
		c := color.NRGBA{A: 255}
		if sub {
			c = hexColor("#333333")
		}
		draw.Draw(dst, block.bandRect(bounds.Dx(), size).Intersect(bounds), image.NewUniform(c), image.Point{}, draw.Over)
	}

	blur := rc.shadowBlur * size
	margin := int(math.Ceil(1.5*blur + size))
	top := int(block.top()) - margin
	bottom := int(block.bottom()) + margin
	area := image.Rect(bounds.Min.X, top, bounds.Max.X, bottom).Intersect(bounds)
	if area.Empty() {
		return block.bottom(), nil
	}

	mask := image.NewAlpha(area)
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	y := block.firstY
	for _, line := range block.lines {
		x := float64(bounds.Min.X) + W/2 - measure(face, line)/2
		d.Dot = fixed.Point26_6{X: f2fix(x), Y: f2fix(middleBaseline(face, y))}
		d.DrawString(line)
		y += block.lineHeight
	}

	if blur > 0 {
		soft := imaging.Blur(mask, blur/2)
		for i := 0; i < max(1, rc.glowPasses); i++ {
			draw.DrawMask(dst, area, image.NewUniform(rc.shadow), image.Point{}, soft, image.Point{}, draw.Over)
		}
	}

	var fill image.Image = image.White
	if rc.gold {
		mid := (block.top() + block.bottom()) / 2
		fill = &gradient{x0: 0, y0: mid - size, x1: 0, y1: mid + size, stops: goldStops}
	}
	draw.DrawMask(dst, area, fill, area.Min, mask, area.Min, draw.Over)
	return block.bottom(), nil
}

// textLayer renders one line centred in a transparent layer with room for its
// shadow. The layer centre is the text's vertical middle.
func textLayer(face font.Face, text string, fill color.Color, shadow color.NRGBA, blur float64) *image.NRGBA {
	m := face.Metrics()
	w := measure(face, text)
	h := fix2f(m.Ascent + m.Descent)
	margin := math.Ceil(1.5*blur) + 2
	lw, lh := int(math.Ceil(w+2*margin)), int(math.Ceil(h+2*margin))

	mask := image.NewAlpha(image.Rect(0, 0, lw, lh))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: f2fix(float64(lw)/2 - w/2), Y: f2fix(middleBaseline(face, float64(lh)/2))},
	}
	d.DrawString(text)

	layer := image.NewNRGBA(mask.Rect)
	if blur > 0 && shadow.A > 0 {
		draw.DrawMask(layer, layer.Rect, image.NewUniform(shadow), image.Point{}, imaging.Blur(mask, blur/2), image.Point{}, draw.Over)
	}
	draw.DrawMask(layer, layer.Rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)
	return layer
}
