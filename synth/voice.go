package synth

import (
	"math"

	"github.com/solenne/drift"
)

// Voice renders one scheduled sound: an oscillator (or noise source) with
// an optional exponential frequency sweep, a gain envelope, an optional
// biquad filter and an optional waveshaper. All scheduling is in graph
// time; rendering before the start time yields silence.
type Voice struct {
	c *Context
	b *Bus
	p drift.VoiceParams

	started   bool
	startAt   float64
	stopped   bool
	stopAt    float64
	connected bool

	gainScale float64
	freq      float64 // smoothed toward targetFreq
	target    float64
	cutoff    float64 // smoothed toward targetCut
	targetCut float64

	phase float64
	noise uint64
	bq    biquad
}

func newVoice(c *Context, b *Bus, p drift.VoiceParams) *Voice {
	v := &Voice{
		c:         c,
		b:         b,
		p:         p,
		connected: true,
		gainScale: 1,
		freq:      p.Freq,
		target:    p.Freq,
		cutoff:    p.Cutoff,
		targetCut: p.Cutoff,
		noise:     0x9e3779b97f4a7c15 ^ uint64(math.Float64bits(p.Freq+p.Cutoff)),
	}
	if p.Filter != drift.FilterNone {
		v.bq.set(p.Filter, p.Cutoff, p.Q)
	}
	return v
}

func (v *Voice) Start(t float64) {
	v.c.mu.Lock()
	if !v.started {
		v.started = true
		v.startAt = t
	}
	v.c.mu.Unlock()
}

// Stop schedules the release at graph time t. Stopping a voice that never
// started, or stopping twice, is an expected race under fast track
// switching and is absorbed silently.
func (v *Voice) Stop(t float64) {
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	if !v.started || v.stopped {
		return
	}
	if t < v.startAt {
		t = v.startAt
	}
	v.stopped = true
	v.stopAt = t
}

// Disconnect removes the voice from its bus. Idempotent.
func (v *Voice) Disconnect() {
	v.c.mu.Lock()
	if v.connected {
		v.connected = false
		v.b.disconnect(v)
	}
	v.c.mu.Unlock()
}

func (v *Voice) SetGain(g float64) {
	v.c.mu.Lock()
	v.gainScale = g
	v.c.mu.Unlock()
}

func (v *Voice) SetFreq(hz float64) {
	v.c.mu.Lock()
	v.target = hz
	v.c.mu.Unlock()
}

func (v *Voice) SetCutoff(hz float64) {
	v.c.mu.Lock()
	v.targetCut = hz
	v.c.mu.Unlock()
}

// envAt evaluates the gain envelope at time u past the start. The level
// at the stop moment is computed analytically so release always ramps
// from the value that was actually sounding.
func (v *Voice) envAt(u float64) float64 {
	e := v.p.Env
	pre := func(u float64) float64 {
		switch {
		case u <= 0:
			return 0
		case u < e.Attack:
			return u / e.Attack
		case u < e.Attack+e.Decay:
			f := (u - e.Attack) / e.Decay
			return 1 - f*(1-e.Sustain)
		default:
			return e.Sustain
		}
	}
	if !v.stopped {
		return pre(u)
	}
	su := v.stopAt - v.startAt
	if u <= su {
		return pre(u)
	}
	if e.Release <= 0 {
		return 0
	}
	r := (u - su) / e.Release
	if r >= 1 {
		return 0
	}
	return pre(su) * (1 - r)
}

// render produces one frame at graph time t. Caller holds the context
// lock.
func (v *Voice) render(t, dt float64) float64 {
	if !v.started || t < v.startAt {
		return 0
	}
	u := t - v.startAt
	env := v.envAt(u)
	if env == 0 && u > v.p.Env.Attack {
		return 0
	}

	// Frequency: scheduled exponential sweep wins; otherwise chase the
	// retune target with a one-pole smoother to keep root shifts
	// click-free.
	f := v.freq
	if v.p.FreqEnd > 0 && v.p.SweepTime > 0 && v.p.Freq > 0 {
		k := u / v.p.SweepTime
		if k > 1 {
			k = 1
		}
		f = v.p.Freq * math.Pow(v.p.FreqEnd/v.p.Freq, k)
	} else if v.freq != v.target {
		v.freq += (v.target - v.freq) * 0.0015
		f = v.freq
	}

	var s float64
	switch v.p.Wave {
	case drift.WaveSine:
		s = math.Sin(2 * math.Pi * v.phase)
	case drift.WaveTriangle:
		if v.phase < 0.5 {
			s = 4*v.phase - 1
		} else {
			s = 3 - 4*v.phase
		}
	case drift.WaveSaw:
		s = 2*v.phase - 1
	case drift.WaveSquare:
		if v.phase < 0.5 {
			s = 1
		} else {
			s = -1
		}
	case drift.WaveNoise:
		s = lcg(&v.noise)
	}
	_, v.phase = math.Modf(v.phase + f*dt)

	if v.p.Drive > 0 {
		s = Drive(s, v.p.Drive)
	}

	if v.p.Filter != drift.FilterNone {
		cut := v.targetCut
		if v.p.CutoffEnd > 0 && v.p.Cutoff > 0 {
			// Cutoff sweep over the attack+decay span of the envelope.
			span := v.p.Env.Attack + v.p.Env.Decay
			k := 1.0
			if span > 0 && u < span {
				k = u / span
			}
			cut = v.p.Cutoff * math.Pow(v.p.CutoffEnd/v.p.Cutoff, k)
		}
		if v.cutoff != cut {
			v.cutoff += (cut - v.cutoff) * 0.002
			v.bq.set(v.p.Filter, v.cutoff, v.p.Q)
		}
		s = v.bq.process(s)
	}

	return s * v.p.Gain * v.gainScale * env
}

// lcg advances the seed and returns a noise sample in [-1, 1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}
