package drift

import "sync"

// Lifecycle counts transient voice creation and teardown across every
// layer of one engine. Leak detection has to be engine-wide: a voice left
// connected to a shared bus is a problem no matter which layer leaked it.
// After all scheduled transients complete, Active must be back to zero.
type Lifecycle struct {
	mu      sync.Mutex
	created int64
	cleaned int64
}

// LifecycleStats is a snapshot of the counters.
type LifecycleStats struct {
	Created int64 `json:"created"`
	Cleaned int64 `json:"cleaned"`
	Active  int64 `json:"active"`
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Create records n nodes brought into the graph. Every call must be paired
// with exactly one later Cleanup carrying the same n.
func (l *Lifecycle) Create(n int) {
	l.mu.Lock()
	l.created += int64(n)
	l.mu.Unlock()
}

// Cleanup records n nodes disconnected from the graph.
func (l *Lifecycle) Cleanup(n int) {
	l.mu.Lock()
	l.cleaned += int64(n)
	l.mu.Unlock()
}

// Active is the number of nodes currently alive.
func (l *Lifecycle) Active() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.created - l.cleaned
}

func (l *Lifecycle) Stats() LifecycleStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LifecycleStats{
		Created: l.created,
		Cleaned: l.cleaned,
		Active:  l.created - l.cleaned,
	}
}

// Reset zeroes the counters. Diagnostic use only; layer transitions never
// reset, or in-flight teardowns would read as leaks.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	l.created = 0
	l.cleaned = 0
	l.mu.Unlock()
}
