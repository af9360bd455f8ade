// Package synth is the audio-graph backend of the engine: buses and
// envelope-shaped voices scheduled in graph time, mixed down to a stereo
// float32 stream and played through oto. The mixer's sample cursor is the
// engine's monotonic time source, so scheduled times are sample-accurate
// no matter how the host schedules the pull callbacks.
package synth

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/oto/v2"

	"github.com/solenne/drift"
)

const (
	SampleRate   = 44100
	channelCount = 2
	bitDepth     = 0 // 32-bit float samples
)

// Context owns the output device and the top-level buses. It implements
// drift.Graph.
type Context struct {
	mu     sync.Mutex
	buses  []*Bus
	level  float64
	cursor atomic.Int64 // frames rendered so far

	otoCtx *oto.Context
	player oto.Player
}

// NewContext opens the audio device and starts pulling. level is the
// master gain in [0, 1].
func NewContext(level float64) (*Context, error) {
	c := newContext(level)
	otoCtx, ready, err := oto.NewContext(SampleRate, channelCount, bitDepth)
	if err != nil {
		return nil, fmt.Errorf("synth: open audio: %w", err)
	}
	<-ready
	c.otoCtx = otoCtx
	c.player = otoCtx.NewPlayer(&renderer{c: c})
	c.player.Play()
	return c, nil
}

// NewOfflineContext builds a context with no audio device. Time advances
// only through Render calls; tests and headless rendering use this.
func NewOfflineContext(level float64) *Context {
	return newContext(level)
}

func newContext(level float64) *Context {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	return &Context{level: level}
}

// Now is the graph time in seconds: frames rendered over the sample rate.
func (c *Context) Now() float64 {
	return float64(c.cursor.Load()) / SampleRate
}

// Close stops the output device. Safe on an offline context.
func (c *Context) Close() {
	if c.player != nil {
		c.player.Close()
	}
}

func (c *Context) NewBus(parent drift.Bus, gain float64) drift.Bus {
	b := &Bus{c: c, gain: gain}
	c.mu.Lock()
	if parent == nil {
		c.buses = append(c.buses, b)
	} else {
		p := parent.(*Bus)
		p.children = append(p.children, b)
	}
	c.mu.Unlock()
	return b
}

func (c *Context) NewVoice(bus drift.Bus, p drift.VoiceParams) drift.Voice {
	b := bus.(*Bus)
	v := newVoice(c, b, p)
	c.mu.Lock()
	b.voices = append(b.voices, v)
	c.mu.Unlock()
	return v
}

// Render produces n stereo frames and advances graph time. Exposed for
// offline use; the oto pull path goes through the same code.
func (c *Context) Render(dst []float32, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const dt = 1.0 / SampleRate
	for i := 0; i < n; i++ {
		t := float64(c.cursor.Load()) * dt
		var sum float64
		for _, b := range c.buses {
			sum += b.render(t, dt)
		}
		s := float32(SoftSat(sum * c.level))
		if dst != nil {
			dst[2*i] = s
			dst[2*i+1] = s
		}
		c.cursor.Add(1)
	}
}

// renderer adapts Render to the io.Reader oto pulls from.
type renderer struct {
	c   *Context
	buf []float32
}

func (r *renderer) Read(p []byte) (int, error) {
	frames := len(p) / (4 * channelCount)
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames*channelCount {
		r.buf = make([]float32, frames*channelCount)
	}
	r.buf = r.buf[:frames*channelCount]
	r.c.Render(r.buf, frames)
	for i, s := range r.buf {
		v := math.Float32bits(s)
		p[4*i] = byte(v)
		p[4*i+1] = byte(v >> 8)
		p[4*i+2] = byte(v >> 16)
		p[4*i+3] = byte(v >> 24)
	}
	return frames * 4 * channelCount, nil
}
