package dsp

import "math"

// Fade returns a raised-cosine ramp value for progress t in [0, 1].
// It starts and ends with zero slope, which keeps gain ramps click-free.
func Fade(t float64) float64 {
	t = Clamp(t, 0, 1)
	v := math.Sin(math.Pi * t / 2)
	return v * v
}
