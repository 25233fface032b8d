package audio

import "math"

// biquad is a second-order IIR section using the RBJ cookbook coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

const butterworthQ = 0.7071067811865476

func newLowPass(sampleRate int, cutoff float64) *biquad {
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosW, alpha := math.Cos(w0), math.Sin(w0)/(2*butterworthQ)
	return normalize((1-cosW)/2, 1-cosW, (1-cosW)/2, 1+alpha, -2*cosW, 1-alpha)
}

func newHighPass(sampleRate int, cutoff float64) *biquad {
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosW, alpha := math.Cos(w0), math.Sin(w0)/(2*butterworthQ)
	return normalize((1+cosW)/2, -(1 + cosW), (1+cosW)/2, 1+alpha, -2*cosW, 1-alpha)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) *biquad {
	return &biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// sine and triangle take a phase in cycles.
func sine(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 1 - 4*math.Abs(p-0.5)
}
