package drift

import (
	"sync"

	"github.com/solenne/drift/dsp"
)

// Modulator drives a scalar parameter with smooth, deterministic motion.
// It samples a 2-D value-noise field along the time axis, scaled by speed,
// at a per-instance vertical offset. Value is a pure function of time and
// the current configuration, so evaluations may be repeated, skipped or
// taken out of order without glitches.
type Modulator struct {
	mu     sync.Mutex
	field  *dsp.Field
	offset float64
	base   float64
	spread float64
	speed  float64
}

// NewModulator creates a modulator whose output covers
// [base-spread, base+spread], moving at speed field-cells per second.
// The seed fixes both the noise field and the instance offset, so equal
// seeds and configuration reproduce the same signal exactly, while
// modulators with distinct seeds stay uncorrelated even when configured
// identically.
func NewModulator(seed uint64, base, spread, speed float64) *Modulator {
	// Derive the offset from the seed so reproducibility needs nothing
	// beyond the constructor arguments.
	h := seed*0x9e3779b97f4a7c15 + 0x632be59bd9b4e019
	h ^= h >> 29
	return &Modulator{
		field:  dsp.NewField(seed),
		offset: float64(h%100000) / 97.0,
		base:   base,
		spread: spread,
		speed:  speed,
	}
}

// Value returns the signal at time t, in [base-spread, base+spread].
func (m *Modulator) Value(t float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base + m.spread*m.field.At(t*m.speed, m.offset)
}

// Normalized returns the same underlying signal remapped to [0, 1].
func (m *Modulator) Normalized(t float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.field.At(t*m.speed, m.offset) + 1) / 2
}

// SetBase changes the center of the output range for future evaluations.
// There is no retroactive smoothing: a consumer already applying the value
// must ramp on its own side to avoid a discontinuity.
func (m *Modulator) SetBase(base float64) {
	m.mu.Lock()
	m.base = base
	m.mu.Unlock()
}

func (m *Modulator) SetSpread(spread float64) {
	m.mu.Lock()
	m.spread = spread
	m.mu.Unlock()
}

func (m *Modulator) SetSpeed(speed float64) {
	m.mu.Lock()
	m.speed = speed
	m.mu.Unlock()
}
