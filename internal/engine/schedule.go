package engine

// State is a phase of a build.
type State int

const (
	Idle State = iota
	RecordingStarted
	Hold
	Crossfade
	RecordingStopped
	Encoded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RecordingStarted:
		return "recording-started"
	case Hold:
		return "hold"
	case Crossfade:
		return "crossfade"
	case RecordingStopped:
		return "recording-stopped"
	case Encoded:
		return "encoded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Layer is one image drawn into a frame. Alpha is the opacity of the draw
// call. During a crossfade the outgoing slide is drawn at 1 and the incoming
// one is painted over it at CrossfadeAlpha, so the outgoing slide's share of
// the frame falls from 1 to 0 while the incoming one rises from 0 to 1. In
// cover mode the incoming draw also lays a black wash of the same alpha, so
// the outgoing slide fades with weight (1-a)^2 and the cut dips toward black.
type Layer struct {
	Segment    int
	LocalFrame int
	Scale      float64
	Alpha      float64
}

// Frame lists the layers of one output frame in drawing order.
type Frame struct {
	Index  int
	Phase  State
	Layers []Layer
}

// Schedule lays out every output frame. A segment's local frame counter keeps
// running through the crossfade that ends it, and the next segment enters the
// crossfade at local frame 0, so every segment after the first starts its hold
// at local frame TransitionFrames and its zoom never jumps.
func (p *Plan) Schedule() []Frame {
	n := len(p.Segments)
	if n == 0 {
		return nil
	}
	hold, trans := p.HoldFrames(), p.TransitionFrames
	frames := make([]Frame, 0, p.TotalFrames())

	layer := func(seg, local int, alpha float64) Layer {
		return Layer{Segment: seg, LocalFrame: local, Scale: p.Zoom.Scale(local), Alpha: alpha}
	}

	for i := 0; i < n; i++ {
		start := 0
		if i > 0 {
			start = trans
		}
		for f := 0; f < hold; f++ {
			frames = append(frames, Frame{
				Index:  len(frames),
				Phase:  Hold,
				Layers: []Layer{layer(i, start+f, 1)},
			})
		}
		if i == n-1 {
			break
		}
		for f := 0; f < trans; f++ {
			frames = append(frames, Frame{
				Index: len(frames),
				Phase: Crossfade,
				Layers: []Layer{
					layer(i, start+hold+f, 1),
					layer(i+1, f, CrossfadeAlpha(f, trans)),
				},
			})
		}
	}
	return frames
}

// CrossfadeAlpha is the opacity of the incoming slide on frame f of a
// transition: 0 on the first frame and exactly 1 on the last.
func CrossfadeAlpha(f, transitionFrames int) float64 {
	if transitionFrames <= 1 {
		return 1
	}
	a := float64(f) / float64(transitionFrames-1)
	if a > 1 {
		return 1
	}
	return a
}
