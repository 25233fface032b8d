package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/pinstudio/internal/config"
	"github.com/ivlev/pinstudio/internal/effects"
	"github.com/ivlev/pinstudio/internal/renderer"
)

func testPlan(n int) *Plan {
	p := &Plan{
		SlideDuration:    2.5,
		FrameRate:        30,
		TransitionFrames: 20,
		Zoom:             effects.NewZoom(true),
		Fit:              renderer.Cover,
		Width:            16,
		Height:           16,
	}
	for i := 0; i < n; i++ {
		p.Segments = append(p.Segments, Segment{Index: i, Ref: "slide.png"})
	}
	return p
}

func TestFrameCounts(t *testing.T) {
	tests := []struct {
		segments int
		want     int
	}{
		{1, 75},
		{2, 170},
		{3, 265},
	}
	for _, tt := range tests {
		p := testPlan(tt.segments)
		if got := p.TotalFrames(); got != tt.want {
			t.Errorf("%d segments: TotalFrames = %d, want %d", tt.segments, got, tt.want)
		}
		if got := len(p.Schedule()); got != tt.want {
			t.Errorf("%d segments: len(Schedule) = %d, want %d", tt.segments, got, tt.want)
		}
	}
}

func TestAudioDuration(t *testing.T) {
	p := testPlan(3)
	if got := p.AudioDuration(); math.Abs(got-9.5) > 1e-9 {
		t.Errorf("AudioDuration = %v, want 9.5", got)
	}
}

func TestScheduleCrossfade(t *testing.T) {
	p := testPlan(2)
	frames := p.Schedule()
	hold, trans := p.HoldFrames(), p.TransitionFrames

	first := frames[hold]
	last := frames[hold+trans-1]
	if first.Phase != Crossfade || last.Phase != Crossfade {
		t.Fatalf("phases = %v, %v", first.Phase, last.Phase)
	}
	if len(first.Layers) != 2 {
		t.Fatalf("crossfade frame has %d layers", len(first.Layers))
	}
	if first.Layers[0].Segment != 0 || first.Layers[0].Alpha != 1 {
		t.Errorf("outgoing layer = %+v", first.Layers[0])
	}
	if first.Layers[1].Alpha != 0 {
		t.Errorf("incoming alpha on first crossfade frame = %v, want 0", first.Layers[1].Alpha)
	}
	if last.Layers[1].Alpha != 1 {
		t.Errorf("incoming alpha on last crossfade frame = %v, want 1", last.Layers[1].Alpha)
	}

	// The outgoing slide keeps zooming through the crossfade.
	if got := first.Layers[0].LocalFrame; got != hold {
		t.Errorf("outgoing local frame = %d, want %d", got, hold)
	}
	// The incoming slide continues from where the crossfade left it.
	next := frames[hold+trans]
	if next.Phase != Hold || next.Layers[0].Segment != 1 || next.Layers[0].LocalFrame != trans {
		t.Errorf("first hold frame of slide 2 = %+v", next)
	}
}

func TestScheduleZoomNeverDecreases(t *testing.T) {
	p := testPlan(3)
	last := map[int]float64{}
	for _, f := range p.Schedule() {
		for _, l := range f.Layers {
			if prev, ok := last[l.Segment]; ok && l.Scale < prev {
				t.Fatalf("frame %d: segment %d scale %v < %v", f.Index, l.Segment, l.Scale, prev)
			}
			last[l.Segment] = l.Scale
		}
	}
}

func TestScheduleIndexesAreSequential(t *testing.T) {
	for i, f := range testPlan(3).Schedule() {
		if f.Index != i {
			t.Fatalf("frame %d has index %d", i, f.Index)
		}
	}
}

func TestCrossfadeAlpha(t *testing.T) {
	if CrossfadeAlpha(0, 20) != 0 || CrossfadeAlpha(19, 20) != 1 {
		t.Error("alpha endpoints wrong")
	}
	for f := 1; f < 20; f++ {
		if CrossfadeAlpha(f, 20) <= CrossfadeAlpha(f-1, 20) {
			t.Fatalf("alpha not increasing at %d", f)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := testPlan(0).Validate(); !errors.Is(err, ErrNoSegments) {
		t.Errorf("empty plan: %v", err)
	}
	bad := testPlan(1)
	bad.SlideDuration = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("zero duration: %v", err)
	}
	bad = testPlan(1)
	bad.Width = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("zero width: %v", err)
	}
}

func TestNewPlanStatic(t *testing.T) {
	cfg := config.Default()
	cfg.SlideDuration = 0
	cfg.Width, cfg.Height = 720, 1280
	cfg.AudioStyle = "pulse"
	p, err := NewPlan([]string{"a.png", "b.png"}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.SlideDuration != config.StaticSlideDuration || p.Zoom.Enabled {
		t.Errorf("static plan = %+v", p)
	}
	if p.Zoom.Scale(50) != 1 {
		t.Error("static plan must not zoom")
	}
	if err := p.Validate(); err != nil {
		t.Error(err)
	}

	cfg.AudioStyle = "polka"
	if _, err := NewPlan([]string{"a.png"}, cfg); err == nil {
		t.Error("expected error for unknown audio style")
	}
}
