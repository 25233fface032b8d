package engine

import (
	"context"
	"time"
)

// Pacer spaces recorded frames in wall-clock time.
type Pacer interface {
	Reset()
	Wait(ctx context.Context) error
}

// RealtimePacer targets one frame every 1000/fps milliseconds. It sleeps
// towards an absolute schedule, so a slow frame is caught up by the next ones
// instead of drifting.
type RealtimePacer struct {
	Interval time.Duration
	next     time.Time
}

func NewRealtimePacer(fps int) *RealtimePacer {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &RealtimePacer{Interval: time.Second / time.Duration(fps)}
}

func (p *RealtimePacer) Reset() {
	p.next = time.Time{}
}

func (p *RealtimePacer) Wait(ctx context.Context) error {
	now := time.Now()
	if p.next.IsZero() {
		p.next = now
	}
	p.next = p.next.Add(p.Interval)
	d := p.next.Sub(now)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
