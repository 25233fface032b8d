package director

import (
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pinstudio/internal/analyzer"
	"github.com/ivlev/pinstudio/internal/overlay"
)

// Director собирает черновик сториборда из набора кадров
type Director struct {
	Detector *analyzer.ContrastDetector
	MinDwell float64 // Minimum time per slide (seconds)
	MaxDwell float64 // Maximum time per slide (seconds)
	// BlockDwell - время чтения одного блока деталей (секунды). Если больше
	// нуля, а общая длительность не задана, длительность слайда считается
	// по среднему числу блоков.
	BlockDwell float64
	Workers    int
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		Detector: analyzer.NewContrastDetector(),
		MinDwell: 1.0,
		MaxDwell: 6.0,
		Workers:  4,
	}
}

// Draft builds a storyboard for refs. When base places its text
// automatically, each slide gets the position picked from its own image, so
// the saved file shows what will be rendered. A positive total sets the slide
// duration so the whole video lasts about that long; without it BlockDwell
// paces slides by how much detail they carry.
func (d *Director) Draft(ctx context.Context, loader overlay.ImageLoader, title string, refs []string, base *overlay.EditState, total float64, fps, transition int) (*Storyboard, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("no slides")
	}

	sb := &Storyboard{
		Version: StoryboardVersion,
		Title:   title,
		Slides:  make([]Slide, len(refs)),
	}
	for i, ref := range refs {
		sb.Slides[i] = Slide{Image: ref, Title: slideTitle(ref)}
	}

	if total > 0 {
		dwell := d.calculateDwellTime(total, len(refs), fps, transition)
		sb.Plan.SlideDuration = &dwell
	}
	if base != nil {
		for i := range sb.Slides {
			st := *base
			sb.Slides[i].Edit = &st
		}
	}

	auto := base != nil && base.Position == overlay.Auto && d.Detector != nil
	pace := total <= 0 && d.BlockDwell > 0 && d.Detector != nil
	if !auto && !pace {
		return sb, nil
	}

	counts := make([]int, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	if d.Workers > 0 {
		g.SetLimit(d.Workers)
	}
	for i := range sb.Slides {
		g.Go(func() error {
			img, err := loader.Load(ctx, sb.Slides[i].Image)
			if err != nil {
				return err
			}
			if auto {
				sb.Slides[i].Edit.Position = d.position(img)
			}
			if pace {
				blocks, err := d.Detector.Detect(img)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", sb.Slides[i].Image, err)
				}
				counts[i] = len(blocks)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if pace {
		dwell := d.readingTime(counts)
		sb.Plan.SlideDuration = &dwell
	}
	return sb, nil
}

func (d *Director) position(img image.Image) overlay.TextPosition {
	switch d.Detector.CalmestBand(img) {
	case analyzer.Top:
		return overlay.Top
	case analyzer.Middle:
		return overlay.Mid
	}
	return overlay.Bottom
}

// calculateDwellTime решает total = n*hold + (n-1)*transition относительно hold
// и ограничивает результат MinDwell/MaxDwell
func (d *Director) calculateDwellTime(total float64, n, fps, transition int) float64 {
	fade := 0.0
	if fps > 0 {
		fade = float64(transition) / float64(fps)
	}
	dwell := (total - float64(n-1)*fade) / float64(n)
	dwell = math.Max(dwell, d.MinDwell)
	dwell = math.Min(dwell, d.MaxDwell)
	return math.Round(dwell*100) / 100
}

// readingTime дает каждому слайду время на чтение среднего числа блоков
// деталей, в пределах MinDwell/MaxDwell
func (d *Director) readingTime(counts []int) float64 {
	sum := 0
	for _, n := range counts {
		sum += n
	}
	dwell := float64(sum) / float64(len(counts)) * d.BlockDwell
	dwell = math.Max(dwell, d.MinDwell)
	dwell = math.Min(dwell, d.MaxDwell)
	return math.Round(dwell*100) / 100
}

func slideTitle(ref string) string {
	if i := strings.Index(ref, "#page="); i >= 0 {
		return filepath.Base(ref[:i]) + " p." + ref[i+len("#page="):]
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return ""
	}
	base := filepath.Base(ref)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EditingLoader applies per-reference edits on top of another loader, so a
// storyboard's slides reach the compositor already edited.
type EditingLoader struct {
	Base   overlay.ImageLoader
	Engine *overlay.Engine
	Edits  map[string]*overlay.EditState
}

func (l *EditingLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	img, err := l.Base.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	st, ok := l.Edits[ref]
	if !ok || st == nil {
		return img, nil
	}
	out, err := l.Engine.Apply(img, *st)
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", ref, err)
	}
	return out, nil
}
