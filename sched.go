package drift

import "time"

// Deferrer runs a function once after a deadline. It is the only
// asynchronous primitive the engine needs besides the clock pass: voice
// teardown after audible completion and phrase-mutation sequencing both go
// through it. Tasks with different deadlines carry no ordering guarantee,
// so every task captures all the state it needs.
type Deferrer interface {
	AfterSeconds(d float64, fn func())
}

// timerDeferrer backs Deferrer with the runtime timer heap.
type timerDeferrer struct{}

// NewTimerDeferrer returns the production Deferrer.
func NewTimerDeferrer() Deferrer {
	return timerDeferrer{}
}

func (timerDeferrer) AfterSeconds(d float64, fn func()) {
	if d < 0 {
		d = 0
	}
	time.AfterFunc(time.Duration(d*float64(time.Second)), fn)
}
