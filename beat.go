package drift

import (
	"math/rand"

	"github.com/solenne/drift/dsp"
)

// beatLayer plays a sixteen-step drum pattern on the drum bus and pumps
// the sidechain on every kick. No persistent sources: every hit is a
// transient that tears itself down.
type beatLayer struct {
	layerBase
	kit drumKit

	velMod *Modulator
	hatMod *Modulator

	kick  [16]bool
	snare [16]bool
	hat   [16]bool
}

func newBeatLayer(e *Engine, rnd *rand.Rand) *beatLayer {
	l := &beatLayer{
		layerBase: newLayerBase("beat", e, e.drum, 1.0, rnd),
		kit:       kits[rnd.Intn(len(kits))],
		velMod:    ShimmerMod(rnd, 0.7, 0.25),
		hatMod:    PulseMod(rnd, 0.5, 0.4),
	}
	l.kick = kickSeeds[rnd.Intn(len(kickSeeds))]
	l.snare = snareSeeds[rnd.Intn(len(snareSeeds))]
	l.hat = hatSeeds[rnd.Intn(len(hatSeeds))]
	e.SetKitName(l.kit.name)
	return l
}

func (l *beatLayer) Start(t float64) {
	l.fadeIn(t)
}

func (l *beatLayer) Stop(t float64) {
	l.fadeOut(t)
}

func (l *beatLayer) OnTick(tick int64, t float64) {
	if !l.emitting() {
		return
	}
	l.mu.Lock()
	step := int(tick % 16)
	kick := l.kick[step]
	snare := l.snare[step]
	hat := l.hat[step]
	l.mu.Unlock()

	vel := dsp.Clamp(l.velMod.Value(t), 0.3, 1)
	if kick {
		l.spawn(t, hitParams(l.kit.kick, vel))
		l.eng.TriggerSidechain(t)
	}
	if snare {
		l.spawn(t, hitParams(l.kit.snare, vel*0.9))
	}
	if hat && l.hatMod.Normalized(t) > 0.25 {
		l.spawn(t, hitParams(l.kit.hat, dsp.Clamp(l.hatMod.Value(t), 0.2, 1)))
	}
}

// OnPhrase sometimes regenerates the patterns: restart from a seed and
// flip a couple of steps so the groove drifts without losing its shape.
func (l *beatLayer) OnPhrase(phrase int64, t float64) {
	if l.rnd.Float64() >= 0.3 {
		return
	}
	kick := kickSeeds[l.rnd.Intn(len(kickSeeds))]
	hat := hatSeeds[l.rnd.Intn(len(hatSeeds))]
	for n := 0; n < 2; n++ {
		i := l.rnd.Intn(16)
		hat[i] = !hat[i]
	}
	l.beginMutation(t, func() {
		l.mu.Lock()
		l.kick = kick
		l.hat = hat
		l.mu.Unlock()
	})
}

func hitParams(h drumHit, vel float64) VoiceParams {
	return VoiceParams{
		Wave:      h.wave,
		Freq:      h.freq,
		FreqEnd:   h.freqEnd,
		SweepTime: h.sweep,
		Gain:      h.gain * vel,
		Env:       Envelope{Attack: h.attack, Decay: h.decay, Release: 0.05},
		Filter:    h.filter,
		Cutoff:    h.cutoff,
		Q:         h.q,
		Drive:     h.drive,
	}
}
