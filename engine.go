package drift

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

const (
	defaultBPM   = 76
	mainBusGain  = 0.8
	drumBusGain  = 0.9
	defaultLevel = 1.0
)

// Config configures an Engine. Graph is required; everything else has a
// usable default.
type Config struct {
	Graph Graph
	BPM   float64 // clamped to [MinBPM, MaxBPM]; 0 means defaultBPM
	Seed  int64   // reproduces a whole track; 0 is a valid seed
	Defer Deferrer
}

// Engine owns the shared output buses and the clock, and orchestrates the
// four layers. One Engine is one endless track.
type Engine struct {
	graph Graph
	clock *Clock
	life  *Lifecycle
	defr  Deferrer
	main  Bus
	drum  Bus

	mu        sync.Mutex
	rnd       *rand.Rand
	layers    []Layer
	running   bool
	level     float64
	kitName   string
	synthName string
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Graph == nil {
		return nil, fmt.Errorf("drift: config needs a graph")
	}
	bpm := cfg.BPM
	if bpm == 0 {
		bpm = defaultBPM
	}
	d := cfg.Defer
	if d == nil {
		d = NewTimerDeferrer()
	}
	e := &Engine{
		graph: cfg.Graph,
		life:  NewLifecycle(),
		defr:  d,
		rnd:   rand.New(rand.NewSource(cfg.Seed)),
		level: defaultLevel,
	}
	e.clock = NewClock(bpm, cfg.Graph.Now)
	e.main = cfg.Graph.NewBus(nil, mainBusGain)
	e.drum = cfg.Graph.NewBus(nil, drumBusGain)
	return e, nil
}

// Start draws the track character, builds the layers and begins firing the
// clock. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	sc := scales[e.rnd.Intn(len(scales))]
	root := 41 + e.rnd.Intn(12) // F2..E3
	layers := []Layer{
		newPadLayer(e, sc, root, rand.New(rand.NewSource(e.rnd.Int63()))),
		newTextureLayer(e, rand.New(rand.NewSource(e.rnd.Int63()))),
		newArpLayer(e, sc, root+24, rand.New(rand.NewSource(e.rnd.Int63()))),
		newBeatLayer(e, rand.New(rand.NewSource(e.rnd.Int63()))),
	}
	e.layers = layers
	e.mu.Unlock()

	// Subscribe before the clock starts so the downbeat pass reaches
	// every layer.
	t := e.Now()
	for _, l := range layers {
		l.Start(t)
		e.clock.Subscribe(l)
	}
	e.clock.Start()
}

// Stop fades every layer out and halts the clock. Teardown deferred from
// earlier ticks still runs so in-flight transients finish cleanly and the
// lifecycle counters come back to zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	layers := e.layers
	e.layers = nil
	e.mu.Unlock()

	t := e.Now()
	for _, l := range layers {
		e.clock.Unsubscribe(l)
		l.Stop(t)
	}
	e.clock.Stop()
}

// Now is the graph's monotonic time in seconds.
func (e *Engine) Now() float64 {
	return e.graph.Now()
}

// deferAt schedules fn at the absolute graph time t.
func (e *Engine) deferAt(t float64, fn func()) {
	e.defr.AfterSeconds(t-e.graph.Now(), fn)
}

// NoteToFreq converts a MIDI note number to Hz, A4 = 69 = 440.
func (e *Engine) NoteToFreq(midi float64) float64 {
	return 440 * math.Exp2((midi-69)/12)
}

// TriggerSidechain dips the main bus at graph time t. The beat layer calls
// this on every kick so the pads breathe around it.
func (e *Engine) TriggerSidechain(t float64) {
	e.main.Duck(t, 0.35, 0.02, 0.3)
}

func (e *Engine) SetBPM(bpm float64) {
	e.clock.SetBPM(bpm)
}

// SetLevel scales the output buses. The value is clamped to [0, 1];
// out-of-range input never reaches scheduling math.
func (e *Engine) SetLevel(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	e.mu.Lock()
	e.level = v
	e.mu.Unlock()
	e.main.SetGain(mainBusGain * v)
	e.drum.SetGain(drumBusGain * v)
}

func (e *Engine) SetKitName(name string) {
	e.mu.Lock()
	e.kitName = name
	e.mu.Unlock()
}

func (e *Engine) SetSynthName(name string) {
	e.mu.Lock()
	e.synthName = name
	e.mu.Unlock()
}

func (e *Engine) MainBus() Bus     { return e.main }
func (e *Engine) DrumBus() Bus     { return e.drum }
func (e *Engine) Clock() *Clock    { return e.clock }
func (e *Engine) Life() *Lifecycle { return e.life }

// Status is the engine state published to the control surface.
type Status struct {
	Running   bool           `json:"running"`
	BPM       float64        `json:"bpm"`
	Tick      int64          `json:"tick"`
	Beat      int64          `json:"beat"`
	Bar       int64          `json:"bar"`
	Phrase    int64          `json:"phrase"`
	Level     float64        `json:"level"`
	Kit       string         `json:"kit"`
	Synth     string         `json:"synth"`
	Lifecycle LifecycleStats `json:"lifecycle"`
}

func (e *Engine) Status() Status {
	tick, beat, bar, phrase := e.clock.Position()
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:   e.running,
		BPM:       e.clock.BPM(),
		Tick:      tick,
		Beat:      beat,
		Bar:       bar,
		Phrase:    phrase,
		Level:     e.level,
		Kit:       e.kitName,
		Synth:     e.synthName,
		Lifecycle: e.life.Stats(),
	}
}
