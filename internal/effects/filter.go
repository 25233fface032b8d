package effects

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Filter is a named colour grade. Each grade is a chain of CSS-style filter
// functions applied in order, with clamping after every step.
type Filter string

const (
	FilterNone Filter = "none"
	Noir       Filter = "noir"
	Vivid      Filter = "vivid"
	Gold       Filter = "gold"
	Cinema     Filter = "cinema"
)

var Filters = []Filter{FilterNone, Noir, Vivid, Gold, Cinema}

type rgb [3]float64

type colorOp func(c rgb) rgb

var chains = map[Filter][]colorOp{
	Noir:   {grayscale(1), contrast(1.2)},
	Vivid:  {saturate(1.5), contrast(1.1)},
	Gold:   {sepia(0.3), saturate(1.4), brightness(1.1)},
	Cinema: {contrast(1.2), brightness(0.9), saturate(1.1)},
}

func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterNone, nil
	}
	for _, f := range Filters {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Apply returns a graded copy of img. FilterNone returns an unmodified copy.
func (f Filter) Apply(img image.Image) *image.NRGBA {
	chain := chains[f]
	if len(chain) == 0 {
		return imaging.Clone(img)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := rgb{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
		for _, op := range chain {
			v = clamp(op(v))
		}
		return color.NRGBA{
			R: uint8(math.Round(v[0] * 255)),
			G: uint8(math.Round(v[1] * 255)),
			B: uint8(math.Round(v[2] * 255)),
			A: c.A,
		}
	})
}

func clamp(c rgb) rgb {
	for i := range c {
		c[i] = math.Max(0, math.Min(1, c[i]))
	}
	return c
}

func brightness(k float64) colorOp {
	return func(c rgb) rgb {
		return rgb{c[0] * k, c[1] * k, c[2] * k}
	}
}

func contrast(k float64) colorOp {
	return func(c rgb) rgb {
		return rgb{(c[0]-0.5)*k + 0.5, (c[1]-0.5)*k + 0.5, (c[2]-0.5)*k + 0.5}
	}
}

// saturate uses the Filter Effects luminance matrix.
func saturate(s float64) colorOp {
	return func(c rgb) rgb {
		return rgb{
			(0.213+0.787*s)*c[0] + (0.715-0.715*s)*c[1] + (0.072-0.072*s)*c[2],
			(0.213-0.213*s)*c[0] + (0.715+0.285*s)*c[1] + (0.072-0.072*s)*c[2],
			(0.213-0.213*s)*c[0] + (0.715-0.715*s)*c[1] + (0.072+0.928*s)*c[2],
		}
	}
}

func grayscale(amount float64) colorOp {
	return saturate(1 - amount)
}

func sepia(amount float64) colorOp {
	k := 1 - amount
	return func(c rgb) rgb {
		return rgb{
			(0.393+0.607*k)*c[0] + (0.769-0.769*k)*c[1] + (0.189-0.189*k)*c[2],
			(0.349-0.349*k)*c[0] + (0.686+0.314*k)*c[1] + (0.168-0.168*k)*c[2],
			(0.272-0.272*k)*c[0] + (0.534-0.534*k)*c[1] + (0.131+0.869*k)*c[2],
		}
	}
}
