package synth

// SoftSat applies gentle saturation with no hard corner, so stacked buses
// never clip harshly.
func SoftSat(x float64) float64 {
	if x > 1 {
		return 1 - 1/(3*x)
	}
	if x < -1 {
		return -1 - 1/(3*x)
	}
	return x - x*x*x/3
}

// Drive is the waveshaper behind the VoiceParams drive amount: more drive
// pushes the signal harder into the saturation curve.
func Drive(x, amount float64) float64 {
	return SoftSat(x * (1 + 2*amount))
}
