package analyzer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// analysisWidth bounds the working resolution; layout decisions do not need more.
const analysisWidth = 320

// ContrastDetector ищет области с деталями по карте границ Собеля
type ContrastDetector struct {
	MinBlockArea  int     // in source pixels
	EdgeThreshold float64 // gradient magnitude on 0-255 luma
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  500,
		EdgeThreshold: 30.0,
	}
}

// Detect returns connected regions of edges, in source coordinates.
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	edges, scale := d.edgeMap(img)
	dilated := dilate(edges, 5, 2)

	b := img.Bounds()
	var blocks []Block
	for _, r := range findContours(dilated) {
		src := image.Rect(
			b.Min.X+int(float64(r.Min.X)/scale), b.Min.Y+int(float64(r.Min.Y)/scale),
			b.Min.X+int(math.Ceil(float64(r.Max.X)/scale)), b.Min.Y+int(math.Ceil(float64(r.Max.Y)/scale)),
		).Intersect(b)
		if src.Dx()*src.Dy() < d.MinBlockArea {
			continue
		}
		blocks = append(blocks, Block{Rect: src, Coverage: density(edges, r)})
	}
	return blocks, nil
}

// edgeMap работает с уменьшенной серой копией и возвращает использованный масштаб
func (d *ContrastDetector) edgeMap(img image.Image) (*image.Gray, float64) {
	w := img.Bounds().Dx()
	scale := 1.0
	src := img
	if w > analysisWidth {
		scale = float64(analysisWidth) / float64(w)
		src = imaging.Resize(img, analysisWidth, 0, imaging.Box)
	}
	return sobel(toGray(src), d.EdgeThreshold), scale
}

func toGray(img image.Image) *image.Gray {
	n := imaging.Grayscale(img)
	gray := image.NewGray(n.Rect)
	for i := 0; i < len(gray.Pix); i++ {
		gray.Pix[i] = n.Pix[i*4]
	}
	return gray
}

// sobel marks pixels whose gradient magnitude exceeds threshold with 255.
func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Bounds()
	edges := image.NewGray(b)
	at := func(x, y int) float64 {
		return float64(gray.Pix[(y-b.Min.Y)*gray.Stride+(x-b.Min.X)])
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) - 2*at(x-1, y) + 2*at(x+1, y) - at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) + at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if math.Hypot(gx, gy) > threshold {
				edges.Pix[(y-b.Min.Y)*edges.Stride+(x-b.Min.X)] = 255
			}
		}
	}
	return edges
}

// dilate расширяет границы, чтобы соседние штрихи слились в одну область
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	b := img.Bounds()
	half := kernelSize / 2
	result := img
	for iter := 0; iter < iterations; iter++ {
		next := image.NewGray(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if result.GrayAt(x, y).Y == 0 {
					continue
				}
				for ky := max(b.Min.Y, y-half); ky <= min(b.Max.Y-1, y+half); ky++ {
					for kx := max(b.Min.X, x-half); kx <= min(b.Max.X-1, x+half); kx++ {
						next.Pix[(ky-b.Min.Y)*next.Stride+(kx-b.Min.X)] = 255
					}
				}
			}
		}
		result = next
	}
	return result
}

// findContours возвращает ограничивающие прямоугольники 4-связных белых областей
func findContours(img *image.Gray) []image.Rectangle {
	b := img.Bounds()
	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	var contours []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y <= 128 || visited[idx(x, y)] {
				continue
			}
			r := image.Rect(x, y, x+1, y+1)
			stack := []image.Point{{X: x, Y: y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if !p.In(b) || visited[idx(p.X, p.Y)] || img.GrayAt(p.X, p.Y).Y <= 128 {
					continue
				}
				visited[idx(p.X, p.Y)] = true
				r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				stack = append(stack,
					image.Point{X: p.X + 1, Y: p.Y},
					image.Point{X: p.X - 1, Y: p.Y},
					image.Point{X: p.X, Y: p.Y + 1},
					image.Point{X: p.X, Y: p.Y - 1},
				)
			}
			contours = append(contours, r)
		}
	}
	return contours
}

func density(edges *image.Gray, r image.Rectangle) float64 {
	r = r.Intersect(edges.Bounds())
	if r.Empty() {
		return 0
	}
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges.GrayAt(x, y).Y > 0 {
				n++
			}
		}
	}
	return float64(n) / float64(r.Dx()*r.Dy())
}
