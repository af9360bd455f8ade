package drift

import (
	"math/rand"

	"github.com/solenne/drift/dsp"
)

// arpLayer plays a sixteen-step melodic pattern above the pad. The
// character draw may land on no preset at all; that variant is a distinct
// voice whose handlers are no-ops by construction, not a nil check spread
// over every call site.
type arpLayer struct {
	layerBase
	sc    scale
	root  int
	voice arpVoice

	noteMod *Modulator
	velMod  *Modulator

	pattern [16]bool
}

// arpVoice is the active/inactive variant of the layer.
type arpVoice interface {
	name() string
	onTick(l *arpLayer, tick int64, t float64)
	onPhrase(l *arpLayer, phrase int64, t float64)
}

type silentArp struct{}

func (silentArp) name() string                       { return "none" }
func (silentArp) onTick(*arpLayer, int64, float64)   {}
func (silentArp) onPhrase(*arpLayer, int64, float64) {}

type pluckArp struct {
	preset synthPreset
}

func newArpLayer(e *Engine, sc scale, root int, rnd *rand.Rand) *arpLayer {
	l := &arpLayer{
		layerBase: newLayerBase("arp", e, e.main, 1.0, rnd),
		sc:        sc,
		root:      root,
		noteMod:   ShimmerMod(rnd, 0.5, 0.5),
		velMod:    PulseMod(rnd, 0.55, 0.35),
	}
	// Roughly one track in four has no arp at all.
	if rnd.Float64() < 0.25 {
		l.voice = silentArp{}
	} else {
		l.voice = &pluckArp{preset: arpPresets[rnd.Intn(len(arpPresets))]}
		l.pattern = l.newPattern()
	}
	return l
}

func (l *arpLayer) newPattern() [16]bool {
	var p [16]bool
	// Always land on the downbeat, then scatter a handful of steps.
	p[0] = true
	for n := 0; n < 5; n++ {
		p[l.rnd.Intn(16)] = true
	}
	return p
}

func (l *arpLayer) Start(t float64) {
	l.fadeIn(t)
}

func (l *arpLayer) Stop(t float64) {
	l.fadeOut(t)
}

func (l *arpLayer) OnTick(tick int64, t float64) {
	if !l.emitting() {
		return
	}
	l.voice.onTick(l, tick, t)
}

func (l *arpLayer) OnPhrase(phrase int64, t float64) {
	l.voice.onPhrase(l, phrase, t)
}

func (a *pluckArp) name() string { return a.preset.name }

func (a *pluckArp) onTick(l *arpLayer, tick int64, t float64) {
	l.mu.Lock()
	hit := l.pattern[tick%16]
	l.mu.Unlock()
	if !hit {
		return
	}

	// The note walks the scale over two octaves, driven by the note
	// modulator so successive hits move smoothly instead of jumping.
	span := 2 * len(l.sc.steps)
	degree := int(l.noteMod.Normalized(t) * float64(span))
	if degree >= span {
		degree = span - 1
	}
	oct := degree / len(l.sc.steps)
	step := l.sc.steps[degree%len(l.sc.steps)]
	freq := l.eng.NoteToFreq(float64(l.root + 12*oct + step))

	vel := dsp.Clamp(l.velMod.Value(t), 0.15, 1)
	p := a.preset
	l.spawn(t, VoiceParams{
		Wave:   p.wave,
		Freq:   freq,
		Gain:   p.gain * vel,
		Env:    Envelope{Attack: p.attack, Decay: p.decay, Release: p.release},
		Filter: p.filter,
		Cutoff: dsp.Clamp(p.cutoff+p.sweep*(vel*2-1), 200, 10000),
		Q:      p.q,
		Drive:  p.drive,
	})
}

// onPhrase sometimes reshuffles the step pattern while the layer is near
// silent.
func (a *pluckArp) onPhrase(l *arpLayer, phrase int64, t float64) {
	if l.rnd.Float64() >= 0.3 {
		return
	}
	next := l.newPattern()
	l.beginMutation(t, func() {
		l.mu.Lock()
		l.pattern = next
		l.mu.Unlock()
	})
}
