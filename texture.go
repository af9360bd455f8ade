package drift

import (
	"math/rand"

	"github.com/solenne/drift/dsp"
)

// textureLayer keeps a filtered noise wash running under everything and
// scatters short grains over a sparse step pattern. Its character is pure
// timbre: no pitch, so it ignores the scale entirely.
type textureLayer struct {
	layerBase
	preset synthPreset

	cutoffMod *Modulator
	grainMod  *Modulator

	steps []int // grain trigger steps, mod 32
	wash  Voice
}

func newTextureLayer(e *Engine, rnd *rand.Rand) *textureLayer {
	p := texturePresets[rnd.Intn(len(texturePresets))]
	return &textureLayer{
		layerBase: newLayerBase("texture", e, e.main, 1.0, rnd),
		preset:    p,
		cutoffMod: WanderMod(rnd, p.cutoff, p.sweep),
		grainMod:  ShimmerMod(rnd, 0.5, 0.5),
		steps:     grainSteps[rnd.Intn(len(grainSteps))],
	}
}

func (l *textureLayer) Start(t float64) {
	l.fadeIn(t)

	wash := l.eng.graph.NewVoice(l.bus, VoiceParams{
		Wave:   WaveNoise,
		Gain:   l.preset.gain * 0.6,
		Env:    Envelope{Attack: 1.5, Sustain: 1, Release: 1.2},
		Filter: l.preset.filter,
		Cutoff: l.preset.cutoff,
		Q:      l.preset.q,
		Drive:  l.preset.drive,
	})
	wash.Start(t)
	l.mu.Lock()
	l.wash = wash
	l.mu.Unlock()
	l.eng.life.Create(1)
}

func (l *textureLayer) OnTick(tick int64, t float64) {
	if !l.emitting() {
		return
	}
	cut := dsp.Clamp(l.cutoffMod.Value(t), 120, 12000)
	l.mu.Lock()
	if l.wash != nil {
		l.wash.SetCutoff(cut)
	}
	steps := l.steps
	l.mu.Unlock()

	step := int(tick % 32)
	for _, s := range steps {
		if s == step && l.grainMod.Normalized(t) > 0.35 {
			l.spawnGrain(t, cut)
			break
		}
	}
}

func (l *textureLayer) spawnGrain(t, cut float64) {
	depth := l.grainMod.Normalized(t)
	l.spawn(t, VoiceParams{
		Wave:   WaveNoise,
		Gain:   l.preset.gain * (0.5 + depth),
		Env:    Envelope{Attack: l.preset.attack, Decay: l.preset.decay * (0.6 + depth), Release: l.preset.release},
		Filter: l.preset.filter,
		Cutoff: dsp.Clamp(cut*(0.8+0.6*depth), 120, 12000),
		Q:      l.preset.q * 1.5,
		Drive:  l.preset.drive,
	})
}

// OnPhrase occasionally re-scatters the grain pattern while near silent.
func (l *textureLayer) OnPhrase(phrase int64, t float64) {
	if l.rnd.Float64() >= 0.25 {
		return
	}
	next := grainSteps[l.rnd.Intn(len(grainSteps))]
	l.beginMutation(t, func() {
		l.mu.Lock()
		l.steps = next
		l.mu.Unlock()
	})
}

func (l *textureLayer) Stop(t float64) {
	if !l.fadeOut(t) {
		return
	}
	l.eng.deferAt(t+fadeOutDur+0.05, func() {
		l.mu.Lock()
		wash := l.wash
		l.wash = nil
		l.mu.Unlock()
		if wash == nil {
			return
		}
		now := l.eng.Now()
		wash.Stop(now)
		l.eng.deferAt(now+1.2+teardownMargin, func() {
			wash.Disconnect()
			l.eng.life.Cleanup(1)
		})
	})
}
