package game

import (
	"math/rand/v2"
	"time"
)

// Clock is the time source and scheduler used by the world.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback created by a Clock.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Rand is the random source for movement, encounters and delays. It is only
// used while the world lock is held.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a seeded Rand.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// timer wraps a Clock timer so that a callback which already fired, but is
// still waiting on the world lock, does nothing once stopped.
type timer struct {
	t       Timer
	stopped bool
}

// after schedules f to run inside the world lock after d.
func (w *World) after(d time.Duration, f func()) *timer {
	h := &timer{}
	h.t = w.clock.AfterFunc(d, func() {
		_ = w.Exec(func() error {
			if h.stopped {
				return nil
			}
			h.stopped = true
			f()
			return nil
		})
	})
	return h
}

// stop cancels the timer. Safe on nil and on timers that already fired.
func (h *timer) stop() {
	if h == nil || h.stopped {
		return
	}
	h.stopped = true
	if h.t != nil {
		h.t.Stop()
	}
}

func (h *timer) pending() bool {
	return h != nil && !h.stopped
}
