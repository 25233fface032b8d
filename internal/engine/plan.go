package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/pinstudio/internal/audio"
	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/effects"
	"github.com/ivlev/pinstudio/internal/renderer"
)

var (
	ErrNoSegments  = errors.New("engine: plan has no segments")
	ErrInvalidPlan = errors.New("engine: invalid plan")
)

const (
	DefaultFrameRate        = 30
	DefaultTransitionFrames = 20
)

// Segment is one slide of the timeline.
type Segment struct {
	Index int
	Ref   string
}

// Plan is the immutable description of one slideshow build.
type Plan struct {
	Segments         []Segment
	SlideDuration    float64
	FrameRate        int
	TransitionFrames int
	Zoom             effects.Zoom
	Audio            audio.Style
	Fit              renderer.FitMode
	Width, Height    int
	Container        string
}

// NewPlan builds a plan for refs from the configuration. A zero slide
// duration selects the static preset: 2.5 s per slide and no zoom.
func NewPlan(refs []string, cfg *config.Config) (*Plan, error) {
	style, err := audio.ParseStyle(cfg.AudioStyle)
	if err != nil {
		return nil, err
	}
	fit, err := renderer.ParseFitMode(cfg.Fit)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		SlideDuration:    cfg.HoldSeconds(),
		FrameRate:        cfg.FPS,
		TransitionFrames: cfg.TransitionFrames,
		Zoom:             effects.Zoom{Enabled: !cfg.Static(), Speed: cfg.ZoomSpeed},
		Audio:            style,
		Fit:              fit,
		Width:            cfg.Width,
		Height:           cfg.Height,
		Container:        cfg.Container,
	}
	for i, ref := range refs {
		p.Segments = append(p.Segments, Segment{Index: i, Ref: ref})
	}
	return p, nil
}

func (p *Plan) Validate() error {
	if len(p.Segments) == 0 {
		return ErrNoSegments
	}
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidPlan, p.Width, p.Height)
	case p.FrameRate <= 0:
		return fmt.Errorf("%w: frame rate %d", ErrInvalidPlan, p.FrameRate)
	case p.SlideDuration <= 0 || math.IsNaN(p.SlideDuration):
		return fmt.Errorf("%w: slide duration %v", ErrInvalidPlan, p.SlideDuration)
	case p.TransitionFrames < 2:
		return fmt.Errorf("%w: transition needs at least 2 frames, got %d", ErrInvalidPlan, p.TransitionFrames)
	case p.HoldFrames() < 1:
		return fmt.Errorf("%w: slide duration %v is shorter than a frame", ErrInvalidPlan, p.SlideDuration)
	}
	for _, s := range p.Segments {
		if s.Ref == "" {
			return fmt.Errorf("%w: segment %d has no image", ErrInvalidPlan, s.Index)
		}
	}
	return nil
}

func (p *Plan) HoldFrames() int {
	return int(math.Round(p.SlideDuration * float64(p.FrameRate)))
}

// TotalFrames counts every hold frame and every crossfade frame.
func (p *Plan) TotalFrames() int {
	n := len(p.Segments)
	if n == 0 {
		return 0
	}
	return n*p.HoldFrames() + (n-1)*p.TransitionFrames
}

// Duration is the length of the recorded picture in seconds.
func (p *Plan) Duration() float64 {
	return float64(p.TotalFrames()) / float64(p.FrameRate)
}

// AudioDuration is the soundtrack length. It is one transition longer than
// the picture so the fade-out never cuts the last slide short.
func (p *Plan) AudioDuration() float64 {
	n := len(p.Segments)
	return float64(n*(p.HoldFrames()+p.TransitionFrames)) / float64(p.FrameRate)
}
