package synth

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/solenne/drift"
)

func TestOfflineTimeIsRenderedFrames(t *testing.T) {
	c := NewOfflineContext(1)
	if c.Now() != 0 {
		t.Fatalf("fresh context time = %v", c.Now())
	}
	c.Render(nil, 4410)
	if got, want := c.Now(), 0.1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Now() = %v after 4410 frames, want %v", got, want)
	}
	c.Render(nil, 44100)
	if got, want := c.Now(), 1.1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestContextLevelClamped(t *testing.T) {
	if c := NewOfflineContext(3); c.level != 1 {
		t.Fatalf("level = %v, want 1", c.level)
	}
	if c := NewOfflineContext(-1); c.level != 0 {
		t.Fatalf("level = %v, want 0", c.level)
	}
}

func TestSoftSat(t *testing.T) {
	if SoftSat(0) != 0 {
		t.Fatal("SoftSat(0) != 0")
	}
	for _, x := range []float64{0.1, 0.5, 0.999, 1, 1.001, 2, 10, 1e6} {
		y := SoftSat(x)
		if y <= 0 || y >= 1 {
			t.Fatalf("SoftSat(%v) = %v outside (0,1)", x, y)
		}
		if yn := SoftSat(-x); yn != -y {
			t.Fatalf("SoftSat not odd at %v: %v vs %v", x, yn, -y)
		}
	}
	// No jump across the knee.
	if d := math.Abs(SoftSat(1.0001) - SoftSat(0.9999)); d > 0.001 {
		t.Fatalf("discontinuity at the knee: %v", d)
	}
	// Monotonic.
	prev := math.Inf(-1)
	for x := -4.0; x <= 4.0; x += 0.01 {
		y := SoftSat(x)
		if y < prev {
			t.Fatalf("SoftSat not monotonic at %v", x)
		}
		prev = y
	}
}

func TestDriveBounded(t *testing.T) {
	for _, amt := range []float64{0, 0.5, 1, 3} {
		for x := -1.0; x <= 1.0; x += 0.05 {
			y := Drive(x, amt)
			if y < -1 || y > 1 {
				t.Fatalf("Drive(%v, %v) = %v", x, amt, y)
			}
		}
	}
	// More drive pushes harder.
	if Drive(0.5, 2) <= Drive(0.5, 0) {
		t.Fatal("drive amount has no effect")
	}
}

func newOfflineVoice(t *testing.T, p drift.VoiceParams) (*Context, *Bus, *Voice) {
	t.Helper()
	c := NewOfflineContext(1)
	b := c.NewBus(nil, 1).(*Bus)
	v := c.NewVoice(b, p).(*Voice)
	return c, b, v
}

func TestEnvelopeShape(t *testing.T) {
	_, _, v := newOfflineVoice(t, drift.VoiceParams{
		Env: drift.Envelope{Attack: 0.1, Decay: 0.2, Sustain: 0.5, Release: 0.4},
	})
	v.Start(0)

	cases := []struct{ u, want float64 }{
		{-1, 0},
		{0, 0},
		{0.05, 0.5},  // mid attack
		{0.1, 1},     // attack peak
		{0.2, 0.75},  // mid decay
		{0.3, 0.5},   // sustain floor
		{5, 0.5},     // holds while running
	}
	for _, c := range cases {
		if got := v.envAt(c.u); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("envAt(%v) = %v, want %v", c.u, got, c.want)
		}
	}

	v.Stop(1.0)
	if got := v.envAt(1.2); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("mid release = %v, want 0.25", got)
	}
	if got := v.envAt(1.4); got != 0 {
		t.Errorf("after release = %v, want 0", got)
	}
}

// Releasing during the attack ramps down from the level actually reached,
// not from full scale.
func TestEnvelopeReleaseFromAttack(t *testing.T) {
	_, _, v := newOfflineVoice(t, drift.VoiceParams{
		Env: drift.Envelope{Attack: 1.0, Decay: 0.2, Sustain: 0.8, Release: 0.5},
	})
	v.Start(0)
	v.Stop(0.5) // halfway up the attack

	if got := v.envAt(0.5); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("level at stop = %v, want 0.5", got)
	}
	if got := v.envAt(0.75); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("mid release = %v, want 0.25", got)
	}
}

func TestVoiceSilentBeforeStart(t *testing.T) {
	c, _, v := newOfflineVoice(t, drift.VoiceParams{
		Wave: drift.WaveSine, Freq: 440, Gain: 0.5,
		Env: drift.Envelope{Sustain: 1},
	})
	v.Start(1.0)

	buf := make([]float32, 2*100)
	c.Render(buf, 100) // well before startAt
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v before start", i, s)
		}
	}
}

func TestVoiceRendersAfterStart(t *testing.T) {
	c, _, v := newOfflineVoice(t, drift.VoiceParams{
		Wave: drift.WaveSine, Freq: 440, Gain: 0.5,
		Env: drift.Envelope{Sustain: 1},
	})
	v.Start(0)

	buf := make([]float32, 2*441)
	c.Render(buf, 441)
	var peak float64
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatal("channels differ")
		}
		if a := math.Abs(float64(buf[i])); a > peak {
			peak = a
		}
	}
	if peak < 0.1 {
		t.Fatalf("peak = %v, voice inaudible", peak)
	}
	if peak > 0.6 {
		t.Fatalf("peak = %v above voice gain", peak)
	}
}

func TestVoiceStopTolerance(t *testing.T) {
	_, _, v := newOfflineVoice(t, drift.VoiceParams{
		Env: drift.Envelope{Attack: 0.1, Sustain: 1, Release: 0.1},
	})

	v.Stop(1) // never started: absorbed
	if v.stopped {
		t.Fatal("stop before start took effect")
	}

	v.Start(2)
	v.Stop(1) // before start time: clamped up
	if v.stopAt != 2 {
		t.Fatalf("stopAt = %v, want clamped to 2", v.stopAt)
	}
	v.Stop(5) // second stop: ignored
	if v.stopAt != 2 {
		t.Fatalf("stopAt = %v after double stop", v.stopAt)
	}
}

func TestDisconnectRemovesFromBus(t *testing.T) {
	c, b, v := newOfflineVoice(t, drift.VoiceParams{
		Wave: drift.WaveSaw, Freq: 110, Gain: 0.5,
		Env: drift.Envelope{Sustain: 1},
	})
	v.Start(0)
	c.Render(nil, 10)

	v.Disconnect()
	v.Disconnect() // idempotent
	if len(b.voices) != 0 {
		t.Fatalf("bus still holds %d voices", len(b.voices))
	}

	buf := make([]float32, 2*10)
	c.Render(buf, 10)
	for _, s := range buf {
		if s != 0 {
			t.Fatal("disconnected voice still sounding")
		}
	}
}

func TestBusRampEvaluatesAndLatches(t *testing.T) {
	c := NewOfflineContext(1)
	b := c.NewBus(nil, 0).(*Bus)
	b.RampGain(1, 1, 2) // 0 -> 1 over [1, 3]

	c.mu.Lock()
	defer c.mu.Unlock()
	if g := b.gainAt(0.5); g != 0 {
		t.Fatalf("gain before ramp = %v", g)
	}
	if g := b.gainAt(2); math.Abs(g-0.5) > 1e-9 {
		t.Fatalf("gain mid ramp = %v, want 0.5", g)
	}
	if g := b.gainAt(4); g != 1 {
		t.Fatalf("gain after ramp = %v, want 1", g)
	}
	// Latched: the ramp is gone and the base gain holds the target.
	if b.rampEnd != 0 || b.gain != 1 {
		t.Fatalf("ramp not latched: gain=%v rampEnd=%v", b.gain, b.rampEnd)
	}
	if g := b.gainAt(2); g != 1 {
		t.Fatalf("gain re-evaluated mid ramp after latch = %v", g)
	}
}

func TestBusSetGainCancelsRamp(t *testing.T) {
	c := NewOfflineContext(1)
	b := c.NewBus(nil, 0).(*Bus)
	b.RampGain(1, 0, 10)
	b.SetGain(0.3)

	c.mu.Lock()
	defer c.mu.Unlock()
	if g := b.gainAt(5); g != 0.3 {
		t.Fatalf("gain = %v after SetGain, want 0.3", g)
	}
}

func TestBusDuckEnvelope(t *testing.T) {
	c := NewOfflineContext(1)
	b := c.NewBus(nil, 1).(*Bus)
	b.Duck(1, 0.4, 0.02, 0.3)

	c.mu.Lock()
	defer c.mu.Unlock()
	if g := b.gainAt(0.5); g != 1 {
		t.Fatalf("gain before duck = %v", g)
	}
	if g := b.gainAt(1.02); math.Abs(g-0.6) > 1e-9 {
		t.Fatalf("gain at full dip = %v, want 0.6", g)
	}
	mid := b.gainAt(1.1)
	if mid <= 0.6 || mid >= 1 {
		t.Fatalf("gain mid release = %v, want recovering", mid)
	}
	if g := b.gainAt(2); g != 1 {
		t.Fatalf("gain after duck = %v, want 1", g)
	}
	if b.hasDuck {
		t.Fatal("duck not cleared after its envelope")
	}
}

func TestChildBusFollowsParentGain(t *testing.T) {
	c := NewOfflineContext(1)
	parent := c.NewBus(nil, 1).(*Bus)
	child := c.NewBus(parent, 1).(*Bus)
	v := c.NewVoice(child, drift.VoiceParams{
		Wave: drift.WaveSquare, Freq: 100, Gain: 0.5,
		Env: drift.Envelope{Sustain: 1},
	}).(*Voice)
	v.Start(0)

	buf := make([]float32, 2*100)
	c.Render(buf, 100)
	var loud float64
	for i := 0; i < len(buf); i += 2 {
		loud += math.Abs(float64(buf[i]))
	}
	if loud == 0 {
		t.Fatal("child bus routed nowhere")
	}

	parent.SetGain(0)
	c.Render(buf, 100)
	for _, s := range buf {
		if s != 0 {
			t.Fatal("parent gain zero but child still audible")
		}
	}
}

func TestBiquadStability(t *testing.T) {
	for _, typ := range []drift.FilterType{drift.FilterLowpass, drift.FilterBandpass, drift.FilterHighpass} {
		var f biquad
		f.set(typ, 1200, 2.0)
		seed := uint64(1)
		for i := 0; i < 100000; i++ {
			y := f.process(lcg(&seed))
			if math.IsNaN(y) || math.Abs(y) > 20 {
				t.Fatalf("filter %v blew up at %d: %v", typ, i, y)
			}
		}
	}
}

func TestBiquadClampsExtremeRequests(t *testing.T) {
	var f biquad
	f.set(drift.FilterLowpass, 1e9, 0.0001) // far past Nyquist, absurd Q
	for i := 0; i < 1000; i++ {
		y := f.process(1)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			t.Fatalf("clamped filter unstable at %d: %v", i, y)
		}
	}
}

func TestRendererReadLayout(t *testing.T) {
	c := NewOfflineContext(1)
	b := c.NewBus(nil, 1).(*Bus)
	v := c.NewVoice(b, drift.VoiceParams{
		Wave: drift.WaveSaw, Freq: 220, Gain: 0.4,
		Env: drift.Envelope{Sustain: 1},
	}).(*Voice)
	v.Start(0)

	r := &renderer{c: c}
	p := make([]byte, 64*4*channelCount)
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(p) {
		t.Fatalf("Read = %d bytes, want %d", n, len(p))
	}
	if got, want := c.Now(), 64.0/SampleRate; math.Abs(got-want) > 1e-12 {
		t.Fatalf("cursor advanced to %v, want %v", got, want)
	}

	nonzero := false
	for i := 0; i < n; i += 8 {
		lch := math.Float32frombits(binary.LittleEndian.Uint32(p[i:]))
		rch := math.Float32frombits(binary.LittleEndian.Uint32(p[i+4:]))
		if lch != rch {
			t.Fatalf("frame %d channels differ: %v %v", i/8, lch, rch)
		}
		if lch != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Fatal("rendered stream is silent")
	}

	if n, _ := r.Read(p[:3]); n != 0 {
		t.Fatalf("partial frame read = %d, want 0", n)
	}
}
