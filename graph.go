package drift

// Waveform selects the oscillator shape of a voice.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
	WaveNoise
)

// FilterType selects the filter applied to a voice, if any.
type FilterType int

const (
	FilterNone FilterType = iota
	FilterLowpass
	FilterBandpass
	FilterHighpass
)

// Envelope is a gain contour in seconds. Sustain is a level in [0, 1];
// a transient voice uses Sustain 0 so its audible end is Attack+Decay.
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// TailAfterStop is how long a voice keeps sounding once stopped.
func (e Envelope) TailAfterStop() float64 {
	return e.Release
}

// VoiceParams describes one sound-producing node to the audio graph.
type VoiceParams struct {
	Wave      Waveform
	Freq      float64
	FreqEnd   float64 // exponential sweep target; 0 means no sweep
	SweepTime float64
	Gain      float64
	Env       Envelope
	Filter    FilterType
	Cutoff    float64
	CutoffEnd float64 // cutoff sweep target; 0 means fixed cutoff
	Q         float64
	Drive     float64 // waveshaper amount; 0 means clean
}

// Voice is a connectable sound source scheduled in graph time.
// Stop on a voice that never started and repeated Disconnect calls are
// expected races under fast track switching and must be silently tolerated.
type Voice interface {
	Start(t float64)
	Stop(t float64)
	Disconnect()
	SetGain(g float64)
	SetFreq(hz float64)
	SetCutoff(hz float64)
}

// Bus is a shared output with a controllable gain. Connection is additive
// only: a layer connects its own voices and never touches another layer's.
type Bus interface {
	Gain() float64
	SetGain(g float64)
	// RampGain moves the bus gain smoothly to target, starting at graph
	// time at and lasting dur seconds.
	RampGain(target, at, dur float64)
	// Duck applies a sidechain dip of the given depth at graph time at.
	Duck(at, depth, attack, release float64)
}

// Graph is the audio-graph capability this engine schedules into. The
// engine never renders samples itself; it only hands the graph voices with
// future start/stop times.
type Graph interface {
	// Now returns the graph's monotonic time in seconds.
	Now() float64
	// NewBus creates a bus feeding parent, or the final output when
	// parent is nil.
	NewBus(parent Bus, gain float64) Bus
	NewVoice(bus Bus, p VoiceParams) Voice
}
