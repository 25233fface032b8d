package effects

// DefaultZoomSpeed is the per-frame growth of the Ken Burns zoom.
const DefaultZoomSpeed = 0.002

// Zoom describes the slow push-in applied to every slide.
type Zoom struct {
	Enabled bool
	Speed   float64
}

func NewZoom(enabled bool) Zoom {
	return Zoom{Enabled: enabled, Speed: DefaultZoomSpeed}
}

// Scale returns the zoom factor for the given frame of a segment.
// Frames are counted from the segment's own first frame, so the factor never
// decreases within a segment.
func (z Zoom) Scale(frame int) float64 {
	if !z.Enabled || frame <= 0 {
		return 1
	}
	speed := z.Speed
	if speed <= 0 {
		speed = DefaultZoomSpeed
	}
	return 1 + float64(frame)*speed
}
