package analyzer

import "image"

// Band - горизонтальная треть изображения
type Band int

const (
	Top Band = iota
	Middle
	Bottom
)

func (b Band) String() string {
	return [...]string{"top", "mid", "bot"}[b]
}

// BandBusyness returns the edge density of the top, middle and bottom thirds.
func (d *ContrastDetector) BandBusyness(img image.Image) [3]float64 {
	edges, _ := d.edgeMap(img)
	eb := edges.Bounds()
	h := eb.Dy()
	var out [3]float64
	for i := range out {
		r := image.Rect(eb.Min.X, eb.Min.Y+h*i/3, eb.Max.X, eb.Min.Y+h*(i+1)/3)
		out[i] = density(edges, r)
	}
	return out
}

// CalmestBand picks the third with the least detail. Ties prefer the bottom,
// then the top, matching where captions usually sit.
func (d *ContrastDetector) CalmestBand(img image.Image) Band {
	busy := d.BandBusyness(img)
	best := Bottom
	for _, b := range []Band{Top, Middle} {
		if busy[b] < busy[best] {
			best = b
		}
	}
	return best
}
