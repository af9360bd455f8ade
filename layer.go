package drift

import (
	"math/rand"
	"sync"
)

// Layer state machine: FadingIn -> Steady -> (Mutating ->) Steady ->
// FadingOut -> Stopped. Mutating is only reachable from Steady and always
// returns there; Stopped is terminal.
type layerState int

const (
	stateFadingIn layerState = iota
	stateSteady
	stateMutating
	stateFadingOut
	stateStopped
)

const (
	fadeInDur     = 4.0
	fadeOutDur    = 2.5
	mutateFadeDur = 1.5

	// teardownMargin keeps a voice connected a little past its audible
	// end so the envelope has settled before disconnection.
	teardownMargin = 0.15
)

// Layer is one independent sound layer driven by the shared clock.
type Layer interface {
	TickListener
	Start(t float64)
	Stop(t float64)
	Name() string
}

// layerBase carries what every layer shares: the engine services, the
// layer's own deterministic random source, a fade state machine over its
// bus gain, and transient spawn/teardown bookkeeping.
type layerBase struct {
	name  string
	eng   *Engine
	bus   Bus
	rnd   *rand.Rand
	level float64 // steady-state bus gain

	mu    sync.Mutex
	state layerState
}

func newLayerBase(name string, eng *Engine, parent Bus, level float64, rnd *rand.Rand) layerBase {
	return layerBase{
		name:  name,
		eng:   eng,
		bus:   eng.graph.NewBus(parent, 0),
		rnd:   rnd,
		level: level,
		state: stateFadingIn,
	}
}

func (b *layerBase) Name() string { return b.name }

func (b *layerBase) stateNow() layerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *layerBase) setStateIf(from, to layerState) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != from {
		return false
	}
	b.state = to
	return true
}

// emitting reports whether tick handlers should produce new transients.
func (b *layerBase) emitting() bool {
	s := b.stateNow()
	return s == stateFadingIn || s == stateSteady || s == stateMutating
}

// fadeIn ramps the bus from silence over several seconds so track start
// has no discontinuity.
func (b *layerBase) fadeIn(t float64) {
	b.bus.SetGain(0)
	b.bus.RampGain(b.level, t, fadeInDur)
	b.eng.deferAt(t+fadeInDur, func() {
		b.setStateIf(stateFadingIn, stateSteady)
	})
}

// fadeOut snapshots nothing but the target: the bus ramps linearly from
// wherever its gain currently is. Returns false if the layer is already
// on its way out.
func (b *layerBase) fadeOut(t float64) bool {
	b.mu.Lock()
	if b.state == stateFadingOut || b.state == stateStopped {
		b.mu.Unlock()
		return false
	}
	b.state = stateFadingOut
	b.mu.Unlock()
	b.bus.RampGain(0, t, fadeOutDur)
	b.eng.deferAt(t+fadeOutDur, func() {
		b.mu.Lock()
		b.state = stateStopped
		b.mu.Unlock()
	})
	return true
}

// beginMutation fades near silence, runs fn while quiet, and fades back.
// Only valid from Steady; a Stop that lands mid-mutation wins and the
// restore ramp is skipped.
func (b *layerBase) beginMutation(t float64, fn func()) {
	if !b.setStateIf(stateSteady, stateMutating) {
		return
	}
	b.bus.RampGain(b.level*0.04, t, mutateFadeDur)
	b.eng.deferAt(t+mutateFadeDur, func() {
		if b.stateNow() != stateMutating {
			return
		}
		fn()
		now := b.eng.Now()
		b.bus.RampGain(b.level, now, mutateFadeDur)
		b.eng.deferAt(now+mutateFadeDur, func() {
			b.setStateIf(stateMutating, stateSteady)
		})
	})
}

// spawn creates the voices of one transient unit on the layer's bus,
// registers them with the lifecycle tracker, schedules their start and
// envelope release, and schedules exactly one teardown strictly after the
// last audible end. The teardown closure owns the voices outright, so it
// acts correctly no matter when it fires relative to other deferred work.
func (b *layerBase) spawn(at float64, ps ...VoiceParams) {
	n := len(ps)
	if n == 0 {
		return
	}
	voices := make([]Voice, n)
	end := at
	for i, p := range ps {
		voices[i] = b.eng.graph.NewVoice(b.bus, p)
		stopAt := at + p.Env.Attack + p.Env.Decay
		if e := stopAt + p.Env.TailAfterStop(); e > end {
			end = e
		}
	}
	b.eng.life.Create(n)
	for i, p := range ps {
		voices[i].Start(at)
		voices[i].Stop(at + p.Env.Attack + p.Env.Decay)
	}
	b.eng.deferAt(end+teardownMargin, func() {
		for _, v := range voices {
			v.Disconnect()
		}
		b.eng.life.Cleanup(n)
	})
}
