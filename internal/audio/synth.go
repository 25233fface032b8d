// Package audio synthesizes the mood soundtracks used by slideshows.
// Every track is generated from oscillators and noise; no samples are loaded.
package audio

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

type Style string

const (
	Mute   Style = "mute"
	Luxury Style = "luxury"
	Focus  Style = "focus"
	Pulse  Style = "pulse"
	Lofi   Style = "lofi"
)

var Styles = []Style{Mute, Luxury, Focus, Pulse, Lofi}

const (
	DefaultSampleRate = 44100

	masterLevel = 0.5
	rampSeconds = 1.0
)

var ErrNonFinite = errors.New("audio: synthesis produced a non-finite sample")

func ParseStyle(s string) (Style, error) {
	if s == "" {
		return Mute, nil
	}
	for _, st := range Styles {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown audio style %q (mute, luxury, focus, pulse, lofi)", s)
}

// Track is a mono signal in [-1, 1]. Sample i plays at i/SampleRate seconds.
type Track struct {
	Style      Style
	SampleRate int
	Samples    []float64
}

func (t *Track) Duration() float64 {
	if len(t.Samples) == 0 {
		return 0
	}
	return float64(len(t.Samples)-1) / float64(t.SampleRate)
}

// At returns the sample nearest to sec.
func (t *Track) At(sec float64) float64 {
	i := int(math.Round(sec * float64(t.SampleRate)))
	if i < 0 || i >= len(t.Samples) {
		return 0
	}
	return t.Samples[i]
}

// Sink receives a finished track.
type Sink interface {
	WriteTrack(t *Track) error
}

type Synthesizer struct {
	SampleRate int
	// Rand drives the noise styles. Nil means a time-seeded source.
	Rand *rand.Rand
}

func NewSynthesizer(sampleRate int, rng *rand.Rand) *Synthesizer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synthesizer{SampleRate: sampleRate, Rand: rng}
}

// Render synthesizes style for duration seconds into sink. Mute is a no-op.
func (s *Synthesizer) Render(style Style, sink Sink, duration float64) error {
	if style == Mute {
		return nil
	}
	track, err := s.Synthesize(style, duration)
	if err != nil {
		return err
	}
	return sink.WriteTrack(track)
}

func (s *Synthesizer) Synthesize(style Style, duration float64) (*Track, error) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("audio: invalid duration %.3fs", duration)
	}
	sr := s.SampleRate
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	n := int(math.Round(duration*float64(sr))) + 1
	samples := make([]float64, n)

	switch style {
	case Mute:
	case Luxury:
		s.luxury(samples, sr)
	case Focus:
		s.focus(samples, sr)
	case Pulse:
		s.pulse(samples, sr, duration)
	case Lofi:
		s.lofi(samples, sr)
	default:
		return nil, fmt.Errorf("audio: unknown style %q", style)
	}

	for i := range samples {
		t := float64(i) / float64(sr)
		v := samples[i] * Envelope(t, duration)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
		samples[i] = math.Max(-1, math.Min(1, v))
	}
	return &Track{Style: style, SampleRate: sr, Samples: samples}, nil
}

// Envelope is the master gain: a linear 1s fade-in, a hold at masterLevel and a
// linear 1s fade-out reaching zero exactly at duration. Tracks shorter than two
// ramps split the time evenly between fade-in and fade-out.
func Envelope(t, duration float64) float64 {
	if t <= 0 || t >= duration {
		return 0
	}
	ramp := math.Min(rampSeconds, duration/2)
	switch {
	case t < ramp:
		return masterLevel * t / ramp
	case t > duration-ramp:
		return masterLevel * (duration - t) / ramp
	default:
		return masterLevel
	}
}

func (s *Synthesizer) rng() *rand.Rand {
	if s.Rand != nil {
		return s.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// luxury: 55 Hz sine, its octave as a triangle and a 110.5 Hz sine beating
// against it, all through a 400 Hz low-pass.
func (s *Synthesizer) luxury(out []float64, sr int) {
	lp := newLowPass(sr, 400)
	for i := range out {
		t := float64(i) / float64(sr)
		v := sine(55*t) + triangle(110*t) + sine(110.5*t)
		out[i] = lp.process(v / 3)
	}
}

// focus: brown-ish noise from a leaky integrator through a 300 Hz low-pass.
func (s *Synthesizer) focus(out []float64, sr int) {
	r := s.rng()
	lp := newLowPass(sr, 300)
	last := 0.0
	for i := range out {
		white := r.Float64()*2 - 1
		last = (last + 0.02*white) / 1.02
		out[i] = lp.process(last * 3.5)
	}
}

const (
	pulseBPM        = 120
	kickLength      = 0.5
	kickStartFreq   = 150.0
	kickEndFreq     = 0.01
	kickStartGain   = 0.8
	kickEndGain     = 0.01
	lofiVibratoHz   = 0.5
	lofiVibratoCent = 15.0
)

// pulse: a 120 BPM train of kicks. Each kick sweeps exponentially from 150 Hz
// towards zero while its gain decays exponentially over half a second.
func (s *Synthesizer) pulse(out []float64, sr int, duration float64) {
	beat := 60.0 / pulseBPM
	for start := 0.0; start < duration; start += beat {
		first := int(math.Ceil(start * float64(sr)))
		phase := 0.0
		for i := first; i < len(out); i++ {
			tau := float64(i)/float64(sr) - start
			if tau >= kickLength {
				break
			}
			k := tau / kickLength
			freq := kickStartFreq * math.Pow(kickEndFreq/kickStartFreq, k)
			gain := kickStartGain * math.Pow(kickEndGain/kickStartGain, k)
			out[i] += gain * sine(phase)
			phase += freq / float64(sr)
		}
	}
}

var lofiChord = []float64{261.63, 311.13, 392.00, 466.16}

// lofi: high-passed hiss under a low-passed four-note triangle chord with a
// slow vibrato.
func (s *Synthesizer) lofi(out []float64, sr int) {
	r := s.rng()
	hp := newHighPass(sr, 1000)
	lp := newLowPass(sr, 800)
	phases := make([]float64, len(lofiChord))
	for i := range out {
		t := float64(i) / float64(sr)
		hiss := hp.process((r.Float64()*2 - 1) * 0.1)

		detune := math.Pow(2, lofiVibratoCent*sine(lofiVibratoHz*t)/1200)
		chord := 0.0
		for j, f := range lofiChord {
			chord += triangle(phases[j])
			phases[j] += f * detune / float64(sr)
		}
		out[i] = hiss + lp.process(chord)*0.15
	}
}
