package synth

import (
	"math"

	"github.com/solenne/drift"
)

// biquad is a direct-form-I two-pole filter with cookbook coefficients.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// set computes coefficients for the given type, cutoff and Q. Cutoff is
// clamped below Nyquist so the filter stays stable whatever the sweep
// asks for.
func (f *biquad) set(typ drift.FilterType, cutoff, q float64) {
	if cutoff < 10 {
		cutoff = 10
	}
	if hi := SampleRate * 0.45; cutoff > hi {
		cutoff = hi
	}
	if q < 0.1 {
		q = 0.1
	}

	w := 2 * math.Pi * cutoff / SampleRate
	sw, cw := math.Sincos(w)
	alpha := sw / (2 * q)
	a0 := 1 + alpha

	switch typ {
	case drift.FilterLowpass:
		f.b0 = (1 - cw) / 2 / a0
		f.b1 = (1 - cw) / a0
		f.b2 = f.b0
	case drift.FilterBandpass:
		f.b0 = alpha / a0
		f.b1 = 0
		f.b2 = -alpha / a0
	case drift.FilterHighpass:
		f.b0 = (1 + cw) / 2 / a0
		f.b1 = -(1 + cw) / a0
		f.b2 = f.b0
	}
	f.a1 = -2 * cw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}
