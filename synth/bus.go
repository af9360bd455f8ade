package synth

import (
	"math"

	"github.com/solenne/drift/dsp"
)

// Bus sums its voices and child buses under one gain. Gain moves either
// immediately, by a scheduled raised-cosine ramp, or momentarily through
// the sidechain duck envelope. Connection is additive only; a voice is removed
// by its own Disconnect, never by another layer.
type Bus struct {
	c        *Context
	children []*Bus
	voices   []*Voice

	gain float64

	// Scheduled gain ramp. rampEnd <= rampStart means no ramp.
	rampFrom  float64
	rampTo    float64
	rampStart float64
	rampEnd   float64

	// Sidechain dip. duckAt < 0 means none pending.
	duckAt      float64
	duckDepth   float64
	duckAttack  float64
	duckRelease float64
	hasDuck     bool
}

func (b *Bus) Gain() float64 {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	return b.gainAt(b.c.Now())
}

// SetGain jumps the gain immediately and cancels any pending ramp.
func (b *Bus) SetGain(g float64) {
	b.c.mu.Lock()
	b.gain = g
	b.rampEnd = 0
	b.rampStart = 0
	b.c.mu.Unlock()
}

// RampGain schedules a raised-cosine move to target starting at graph
// time at. The ramp starts from wherever the gain is at that moment.
func (b *Bus) RampGain(target, at, dur float64) {
	b.c.mu.Lock()
	b.rampFrom = b.gainAt(at)
	b.rampTo = target
	b.rampStart = at
	b.rampEnd = at + dur
	b.c.mu.Unlock()
}

// Duck schedules a sidechain dip of depth at graph time at. A new duck
// replaces the previous one; kicks are spaced wider than the envelope.
func (b *Bus) Duck(at, depth, attack, release float64) {
	b.c.mu.Lock()
	b.duckAt = at
	b.duckDepth = depth
	b.duckAttack = attack
	b.duckRelease = release
	b.hasDuck = true
	b.c.mu.Unlock()
}

// gainAt evaluates base gain, ramp and duck at graph time t. Caller holds
// the context lock.
func (b *Bus) gainAt(t float64) float64 {
	g := b.gain
	if b.rampEnd > b.rampStart {
		switch {
		case t <= b.rampStart:
			// not yet
		case t >= b.rampEnd:
			g = b.rampTo
			b.gain = b.rampTo
			b.rampEnd = 0
			b.rampStart = 0
		default:
			k := dsp.Fade((t - b.rampStart) / (b.rampEnd - b.rampStart))
			g = b.rampFrom + (b.rampTo-b.rampFrom)*k
		}
	}
	if b.hasDuck {
		u := t - b.duckAt
		switch {
		case u < 0:
			// not yet
		case u < b.duckAttack:
			g *= 1 - b.duckDepth*(u/b.duckAttack)
		case u < b.duckAttack+b.duckRelease:
			r := (u - b.duckAttack) / b.duckRelease
			g *= 1 - b.duckDepth*math.Exp(-5*r)
		default:
			b.hasDuck = false
		}
	}
	return g
}

// render sums one frame of the bus tree. Caller holds the context lock.
func (b *Bus) render(t, dt float64) float64 {
	var sum float64
	for _, v := range b.voices {
		sum += v.render(t, dt)
	}
	for _, ch := range b.children {
		sum += ch.render(t, dt)
	}
	return sum * b.gainAt(t)
}

// disconnect removes v. Caller holds the context lock.
func (b *Bus) disconnect(v *Voice) {
	for i, x := range b.voices {
		if x == v {
			b.voices = append(b.voices[:i], b.voices[i+1:]...)
			return
		}
	}
}
