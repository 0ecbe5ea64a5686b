package store

import (
	"sync"
	"time"
)

// DefaultThrottleWait is the write coalescing window.
const DefaultThrottleWait = 800 * time.Millisecond

// Throttle rate-limits calls to fn. The first call in a quiet window runs
// immediately; later calls inside the window collapse into one trailing call
// carrying the most recent argument.
//
// fn runs with the throttle's lock held, so it must not call back into the
// throttle. Cancel therefore also waits for an fn already running.
type Throttle[T any] struct {
	fn    func(T)
	wait  time.Duration
	clock Clock

	mu      sync.Mutex
	last    time.Time
	latest  T
	pending bool
	timer   Timer
	gen     uint64
}

// ThrottleOption configures a Throttle.
type ThrottleOption func(*throttleConfig)

type throttleConfig struct {
	clock Clock
}

// WithClock replaces the wall clock.
func WithClock(c Clock) ThrottleOption {
	return func(cfg *throttleConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// NewThrottle wraps fn. A non-positive wait uses DefaultThrottleWait.
func NewThrottle[T any](fn func(T), wait time.Duration, opts ...ThrottleOption) *Throttle[T] {
	if wait <= 0 {
		wait = DefaultThrottleWait
	}
	cfg := throttleConfig{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Throttle[T]{
		fn:    fn,
		wait:  wait,
		clock: cfg.clock,
	}
}

// Call invokes fn(v) now or schedules it for the end of the current window.
func (t *Throttle[T]) Call(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	remaining := t.wait - now.Sub(t.last)

	// remaining > wait means the clock went backwards; treat as a new window.
	if t.last.IsZero() || remaining <= 0 || remaining > t.wait {
		t.stopTimer()
		t.pending = false
		t.last = now
		t.fn(v)
		return
	}

	t.latest = v
	t.pending = true
	if t.timer == nil {
		gen := t.gen
		t.timer = t.clock.AfterFunc(remaining, func() { t.fire(gen) })
	}
}

// Cancel drops any pending trailing call.
func (t *Throttle[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimer()
	t.pending = false
	var zero T
	t.latest = zero
}

// Flush runs a pending trailing call immediately.
func (t *Throttle[T]) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending {
		return
	}
	t.stopTimer()
	t.runPending()
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *Throttle[T]) fire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || !t.pending {
		return
	}
	t.timer = nil
	t.gen++
	t.runPending()
}

// runPending expects t.mu held and the timer already cleared.
func (t *Throttle[T]) runPending() {
	v := t.latest
	var zero T
	t.latest = zero
	t.pending = false
	t.last = t.clock.Now()
	t.fn(v)
}

// stopTimer expects t.mu held. Bumping gen makes a timer that already
// fired but is blocked on the lock a no-op.
func (t *Throttle[T]) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
