package drift

import (
	"math/rand"

	"github.com/solenne/drift/dsp"
)

// padLayer sustains a detuned chord drone on the main bus. Every tick it
// moves the drone filter along its cutoff modulator; on sparse steps it
// adds a slow chord swell; on some phrases it shifts the tonal root while
// faded to near silence.
type padLayer struct {
	layerBase
	preset synthPreset
	sc     scale
	steps  []int // swell trigger steps, mod 32

	cutoffMod *Modulator
	swellMod  *Modulator
	breathMod *Modulator

	root        int // midi
	pendingRoot int // staged on phrase, applied inside the mutation step
	chord       []int
	drones      []droneVoice
}

type droneVoice struct {
	v      Voice
	degree int
	detune float64
}

func newPadLayer(e *Engine, sc scale, root int, rnd *rand.Rand) *padLayer {
	p := padPresets[rnd.Intn(len(padPresets))]
	l := &padLayer{
		layerBase: newLayerBase("pad", e, e.main, 1.0, rnd),
		preset:    p,
		sc:        sc,
		steps:     swellSteps[rnd.Intn(len(swellSteps))],
		cutoffMod: WanderMod(rnd, p.cutoff, p.sweep),
		swellMod:  ShimmerMod(rnd, 0.5, 0.5),
		breathMod: DriftMod(rnd, 1, 0.15),
		root:      root,
		chord:     []int{0, 2, 4},
	}
	e.SetSynthName(p.name)
	return l
}

func (l *padLayer) degreeFreq(degree int) float64 {
	oct := degree / len(l.sc.steps)
	step := l.sc.steps[degree%len(l.sc.steps)]
	return l.eng.NoteToFreq(float64(l.root + 12*oct + step))
}

func (l *padLayer) Start(t float64) {
	l.fadeIn(t)

	var drones []droneVoice
	for _, deg := range l.chord {
		for _, det := range []float64{-l.preset.detune, l.preset.detune} {
			d := droneVoice{degree: deg, detune: det}
			d.v = l.eng.graph.NewVoice(l.bus, VoiceParams{
				Wave:   l.preset.wave,
				Freq:   l.degreeFreq(deg) * (1 + det),
				Gain:   l.preset.gain,
				Env:    Envelope{Attack: 0.8, Sustain: 1, Release: l.preset.release},
				Filter: l.preset.filter,
				Cutoff: l.preset.cutoff,
				Q:      l.preset.q,
				Drive:  l.preset.drive,
			})
			d.v.Start(t)
			drones = append(drones, d)
		}
	}
	l.mu.Lock()
	l.drones = drones
	l.mu.Unlock()
	l.eng.life.Create(len(drones))
}

func (l *padLayer) OnTick(tick int64, t float64) {
	if !l.emitting() {
		return
	}
	cut := dsp.Clamp(l.cutoffMod.Value(t), 80, 9000)
	breath := l.breathMod.Value(t)
	l.mu.Lock()
	for _, d := range l.drones {
		d.v.SetCutoff(cut)
		d.v.SetGain(breath)
	}
	l.mu.Unlock()

	step := int(tick % 32)
	for _, s := range l.steps {
		if s == step && l.swellMod.Normalized(t) > 0.45 {
			l.spawnSwell(t)
			break
		}
	}
}

// spawnSwell adds one slow transient chord an octave above the drone.
func (l *padLayer) spawnSwell(t float64) {
	l.mu.Lock()
	chord := append([]int(nil), l.chord...)
	l.mu.Unlock()

	gain := l.preset.gain * (0.4 + 0.5*l.swellMod.Normalized(t))
	ps := make([]VoiceParams, 0, len(chord))
	for _, deg := range chord {
		ps = append(ps, VoiceParams{
			Wave:   l.preset.wave,
			Freq:   l.degreeFreq(deg) * 2,
			Gain:   gain,
			Env:    Envelope{Attack: l.preset.attack, Decay: l.preset.decay, Release: l.preset.release},
			Filter: l.preset.filter,
			Cutoff: dsp.Clamp(l.cutoffMod.Value(t)*1.5, 200, 9000),
			Q:      l.preset.q,
			Drive:  l.preset.drive,
		})
	}
	l.spawn(t, ps...)
}

// OnPhrase sometimes shifts the tonal center. The new root is staged
// explicitly and applied inside the mutation step, while the layer is
// near silent, so the jump is never audible.
func (l *padLayer) OnPhrase(phrase int64, t float64) {
	if l.rnd.Float64() >= 0.35 {
		return
	}
	shifts := []int{-5, -3, 3, 5, 7}
	l.mu.Lock()
	l.pendingRoot = l.root + shifts[l.rnd.Intn(len(shifts))]
	l.mu.Unlock()

	l.beginMutation(t, func() {
		l.mu.Lock()
		l.root = l.pendingRoot
		for _, d := range l.drones {
			d.v.SetFreq(l.degreeFreq(d.degree) * (1 + d.detune))
		}
		l.mu.Unlock()
	})
}

// Stop fades the bus, hard-stops the drones strictly after the fade
// completes, and tears them down once their release has settled.
func (l *padLayer) Stop(t float64) {
	if !l.fadeOut(t) {
		return
	}
	release := l.preset.release
	l.eng.deferAt(t+fadeOutDur+0.05, func() {
		l.mu.Lock()
		drones := l.drones
		l.drones = nil
		l.mu.Unlock()
		if len(drones) == 0 {
			return
		}
		now := l.eng.Now()
		for _, d := range drones {
			d.v.Stop(now)
		}
		l.eng.deferAt(now+release+teardownMargin, func() {
			for _, d := range drones {
				d.v.Disconnect()
			}
			l.eng.life.Cleanup(len(drones))
		})
	})
}
