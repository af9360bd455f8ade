package drift

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// fakeTime is a settable graph time safe to read from other goroutines.
type fakeTime struct {
	bits atomic.Uint64
}

func (ft *fakeTime) Get() float64  { return math.Float64frombits(ft.bits.Load()) }
func (ft *fakeTime) Set(t float64) { ft.bits.Store(math.Float64bits(t)) }

// manualDeferrer queues deferred work against fake time. Tasks run only
// when the test advances time, in deadline order, with the fake clock set
// to each task's deadline as it runs.
type manualDeferrer struct {
	ft    *fakeTime
	mu    sync.Mutex
	tasks []manualTask
}

type manualTask struct {
	at float64
	fn func()
}

func (d *manualDeferrer) AfterSeconds(delay float64, fn func()) {
	if delay < 0 {
		delay = 0
	}
	d.mu.Lock()
	d.tasks = append(d.tasks, manualTask{at: d.ft.Get() + delay, fn: fn})
	d.mu.Unlock()
}

func (d *manualDeferrer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// advance runs every task due at or before to, then leaves time at to.
func (d *manualDeferrer) advance(to float64) {
	for {
		d.mu.Lock()
		sort.SliceStable(d.tasks, func(i, j int) bool { return d.tasks[i].at < d.tasks[j].at })
		if len(d.tasks) == 0 || d.tasks[0].at > to {
			d.mu.Unlock()
			break
		}
		task := d.tasks[0]
		d.tasks = d.tasks[1:]
		d.mu.Unlock()
		if task.at > d.ft.Get() {
			d.ft.Set(task.at)
		}
		task.fn()
	}
	d.ft.Set(to)
}

// fakeGraph records every bus and voice the engine creates.
type fakeGraph struct {
	ft     *fakeTime
	mu     sync.Mutex
	buses  []*fakeBus
	voices []*fakeVoice
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{ft: &fakeTime{}}
}

func (g *fakeGraph) Now() float64 { return g.ft.Get() }

func (g *fakeGraph) NewBus(parent Bus, gain float64) Bus {
	b := &fakeBus{gain: gain, parent: parent}
	g.mu.Lock()
	g.buses = append(g.buses, b)
	g.mu.Unlock()
	return b
}

func (g *fakeGraph) NewVoice(bus Bus, p VoiceParams) Voice {
	v := &fakeVoice{bus: bus, p: p}
	g.mu.Lock()
	g.voices = append(g.voices, v)
	g.mu.Unlock()
	return v
}

func (g *fakeGraph) voiceCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.voices)
}

type busRamp struct {
	target, at, dur float64
}

type busDuck struct {
	at, depth, attack, release float64
}

type fakeBus struct {
	parent Bus
	mu     sync.Mutex
	gain   float64
	ramps  []busRamp
	ducks  []busDuck
}

func (b *fakeBus) Gain() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gain
}

func (b *fakeBus) SetGain(g float64) {
	b.mu.Lock()
	b.gain = g
	b.mu.Unlock()
}

func (b *fakeBus) RampGain(target, at, dur float64) {
	b.mu.Lock()
	b.ramps = append(b.ramps, busRamp{target, at, dur})
	b.gain = target
	b.mu.Unlock()
}

func (b *fakeBus) Duck(at, depth, attack, release float64) {
	b.mu.Lock()
	b.ducks = append(b.ducks, busDuck{at, depth, attack, release})
	b.mu.Unlock()
}

func (b *fakeBus) duckCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ducks)
}

type fakeVoice struct {
	bus Bus
	p   VoiceParams

	mu          sync.Mutex
	starts      []float64
	stops       []float64
	disconnects int
	freqs       []float64
	cutoffs     []float64
	gains       []float64
}

func (v *fakeVoice) Start(t float64) {
	v.mu.Lock()
	v.starts = append(v.starts, t)
	v.mu.Unlock()
}

func (v *fakeVoice) Stop(t float64) {
	v.mu.Lock()
	v.stops = append(v.stops, t)
	v.mu.Unlock()
}

func (v *fakeVoice) Disconnect() {
	v.mu.Lock()
	v.disconnects++
	v.mu.Unlock()
}

func (v *fakeVoice) SetGain(g float64) {
	v.mu.Lock()
	v.gains = append(v.gains, g)
	v.mu.Unlock()
}

func (v *fakeVoice) SetFreq(hz float64) {
	v.mu.Lock()
	v.freqs = append(v.freqs, hz)
	v.mu.Unlock()
}

func (v *fakeVoice) SetCutoff(hz float64) {
	v.mu.Lock()
	v.cutoffs = append(v.cutoffs, hz)
	v.mu.Unlock()
}

// newTestEngine wires an engine to a fake graph and a manual deferrer
// sharing one fake clock.
func newTestEngine(seed int64) (*Engine, *fakeGraph, *manualDeferrer) {
	g := newFakeGraph()
	d := &manualDeferrer{ft: g.ft}
	e, err := NewEngine(Config{Graph: g, Seed: seed, Defer: d})
	if err != nil {
		panic(err)
	}
	return e, g, d
}
