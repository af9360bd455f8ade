package drift

import "math/rand"

// Modulation presets: named speed factories over NewModulator. Each draws
// its seed from the supplied source so a layer running several modulators
// gets uncorrelated movement, while a seeded source reproduces a run.

// DriftMod moves barely perceptibly; good for tonal color over minutes.
func DriftMod(rnd *rand.Rand, base, spread float64) *Modulator {
	return NewModulator(rnd.Uint64(), base, spread, 0.02)
}

// WanderMod moves on the scale of a phrase; good for filter sweeps.
func WanderMod(rnd *rand.Rand, base, spread float64) *Modulator {
	return NewModulator(rnd.Uint64(), base, spread, 0.08)
}

// ShimmerMod moves on the scale of a bar; good for velocity and detune.
func ShimmerMod(rnd *rand.Rand, base, spread float64) *Modulator {
	return NewModulator(rnd.Uint64(), base, spread, 0.4)
}

// PulseMod moves within a beat; good for fast articulation changes.
func PulseMod(rnd *rand.Rand, base, spread float64) *Modulator {
	return NewModulator(rnd.Uint64(), base, spread, 1.6)
}
