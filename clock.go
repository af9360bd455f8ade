package drift

import (
	"sync"
	"time"
)

// Musical subdivisions are fixed: 4 ticks to a beat, 4 beats to a bar,
// 4 bars to a phrase.
const (
	TicksPerBeat  = 4
	BeatsPerBar   = 4
	BarsPerPhrase = 4

	MinBPM = 60
	MaxBPM = 140
)

// The scheduling pass runs well inside the lookahead window so a tick is
// always announced before its ideal time arrives.
const (
	lookahead    = 0.1 // seconds
	passInterval = 25 * time.Millisecond
)

// TickListener receives every tick. Listeners that additionally implement
// BeatListener, BarListener or PhraseListener get those callbacks on the
// corresponding boundaries, with the same time value as the enclosing tick.
type TickListener interface {
	OnTick(tick int64, t float64)
}

type BeatListener interface {
	OnBeat(beat int64, t float64)
}

type BarListener interface {
	OnBar(bar int64, t float64)
}

type PhraseListener interface {
	OnPhrase(phrase int64, t float64)
}

// Clock is the lookahead scheduler that owns musical time. The host gives
// no precise timer, so the clock never trusts the wall interval to land on
// a musical boundary: each pass reads the time source and fires every tick
// whose ideal start time falls within the lookahead window, carrying the
// ideal time rather than the pass time. Host jitter only changes how far
// in advance a tick is announced, never its announced time or order.
type Clock struct {
	mu        sync.Mutex
	now       func() float64
	bpm       float64
	listeners []TickListener

	running  bool
	quit     chan struct{}
	nextTick int64
	nextTime float64 // ideal start time of nextTick
	lastTick int64   // most recently fired tick, -1 before the first
}

// NewClock creates a stopped clock reading time from now. The bpm is
// clamped to [MinBPM, MaxBPM].
func NewClock(bpm float64, now func() float64) *Clock {
	return &Clock{
		now:      now,
		bpm:      clampBPM(bpm),
		lastTick: -1,
	}
}

func clampBPM(bpm float64) float64 {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// SetBPM clamps and applies a new tempo. It takes effect from the next
// scheduling pass; ticks already fired keep the times they were announced
// with.
func (c *Clock) SetBPM(bpm float64) {
	c.mu.Lock()
	c.bpm = clampBPM(bpm)
	c.mu.Unlock()
}

func (c *Clock) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// TickDuration is the ideal spacing between ticks at the current tempo.
func (c *Clock) TickDuration() float64 {
	return 60 / c.BPM() / TicksPerBeat
}

func (c *Clock) BeatDuration() float64 {
	return 60 / c.BPM()
}

// Subscribe adds a fan-out target. Safe at any time, including from inside
// a firing callback: each pass iterates a snapshot of the listener list.
func (c *Clock) Subscribe(l TickListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Unsubscribe removes a previously subscribed listener. A listener removed
// mid-pass still receives the events of the snapshot it was part of.
func (c *Clock) Unsubscribe(l TickListener) {
	c.mu.Lock()
	for i, x := range c.listeners {
		if x == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Start anchors musical time at the current time-source reading, resets
// all counters and begins the periodic scheduling pass. A stopped clock
// may be started again.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.nextTick = 0
	c.nextTime = c.now()
	c.lastTick = -1
	c.quit = make(chan struct{})
	quit := c.quit
	c.mu.Unlock()

	go c.run(quit)
}

// Stop halts the scheduling pass. Idempotent. Ticks already fired are not
// retracted; deferred work they scheduled still runs.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.quit)
	c.mu.Unlock()
}

func (c *Clock) run(quit chan struct{}) {
	// Fire immediately so tick 0 is not delayed by the first interval.
	c.pass()
	tick := time.NewTicker(passInterval)
	defer tick.Stop()
	for {
		select {
		case <-quit:
			return
		case <-tick.C:
			c.pass()
		}
	}
}

// firing is one due tick with its ideal time.
type firing struct {
	tick int64
	time float64
}

// pass fires every not-yet-fired tick whose ideal time lies within the
// lookahead window. If the host delayed us long enough for several ticks
// to become due they all fire now, each with its own ideal time.
func (c *Clock) pass() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	horizon := c.now() + lookahead
	tickDur := 60 / c.bpm / TicksPerBeat

	var due []firing
	for c.nextTime <= horizon {
		due = append(due, firing{c.nextTick, c.nextTime})
		c.nextTick++
		c.nextTime += tickDur
	}
	if len(due) > 0 {
		c.lastTick = due[len(due)-1].tick
	}
	ls := make([]TickListener, len(c.listeners))
	copy(ls, c.listeners)
	c.mu.Unlock()

	for _, f := range due {
		fire(ls, f.tick, f.time)
	}
}

// fire delivers one tick to every listener. For each listener the nesting
// order is tick, then beat, bar and phrase on their boundaries, all with
// the same time value, before moving to the next listener.
func fire(ls []TickListener, tick int64, t float64) {
	beat := tick / TicksPerBeat
	bar := beat / BeatsPerBar
	phrase := bar / BarsPerPhrase

	for _, l := range ls {
		l.OnTick(tick, t)
		if tick%TicksPerBeat != 0 {
			continue
		}
		if bl, ok := l.(BeatListener); ok {
			bl.OnBeat(beat, t)
		}
		if beat%BeatsPerBar != 0 {
			continue
		}
		if bl, ok := l.(BarListener); ok {
			bl.OnBar(bar, t)
		}
		if bar%BarsPerPhrase != 0 {
			continue
		}
		if pl, ok := l.(PhraseListener); ok {
			pl.OnPhrase(phrase, t)
		}
	}
}

// Position reports the most recently fired tick and the counters derived
// from it. Before any tick has fired all counters are zero.
func (c *Clock) Position() (tick, beat, bar, phrase int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastTick < 0 {
		return 0, 0, 0, 0
	}
	tick = c.lastTick
	beat = tick / TicksPerBeat
	bar = beat / BeatsPerBar
	phrase = bar / BarsPerPhrase
	return
}

// Running reports whether the clock is currently firing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
