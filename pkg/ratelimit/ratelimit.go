// Package ratelimit implements per-key sliding-window admission
// control. State lives in process memory only: with N instances of the
// host process the effective limit per key is max × N. Backing the
// window with a shared store is a deployment decision, not something
// this package does on its own.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow tracks recent attempts per key and rejects a key once
// it has max attempts younger than window.
type SlidingWindow struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock injects the time source. Tests use this to step through
// the window deterministically.
func WithClock(now func() time.Time) Option {
	return func(sw *SlidingWindow) {
		sw.now = now
	}
}

// New creates a sliding-window limiter allowing max attempts per key
// within window.
func New(max int, window time.Duration, opts ...Option) *SlidingWindow {
	sw := &SlidingWindow{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Allow records an attempt for key and reports whether it is admitted.
// Rejected attempts are not recorded, so hammering a limited key does
// not extend its window.
func (sw *SlidingWindow) Allow(key string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	valid := sw.prune(key, now)

	if len(valid) >= sw.max {
		sw.attempts[key] = valid
		return false
	}

	sw.attempts[key] = append(valid, now)
	return true
}

// Remaining returns how many attempts key has left in the current window.
func (sw *SlidingWindow) Remaining(key string) int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	valid := sw.prune(key, sw.now())
	sw.attempts[key] = valid

	remaining := sw.max - len(valid)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt returns when the oldest recorded attempt for key ages out.
// For a key with no recorded attempts it returns the current time.
func (sw *SlidingWindow) ResetAt(key string) time.Time {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	valid := sw.prune(key, now)
	sw.attempts[key] = valid

	if len(valid) == 0 {
		return now
	}
	return valid[0].Add(sw.window)
}

// Reset clears the recorded attempts for key.
func (sw *SlidingWindow) Reset(key string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.attempts, key)
}

// ClearAll clears all recorded attempts.
func (sw *SlidingWindow) ClearAll() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.attempts = make(map[string][]time.Time)
}

// prune drops attempts older than the window. Callers must hold mu.
func (sw *SlidingWindow) prune(key string, now time.Time) []time.Time {
	var valid []time.Time
	for _, t := range sw.attempts[key] {
		if now.Sub(t) <= sw.window {
			valid = append(valid, t)
		}
	}
	return valid
}
