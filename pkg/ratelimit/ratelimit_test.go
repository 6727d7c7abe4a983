package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestLimiter(max int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(max, window, WithClock(clock.now)), clock
}

func TestAllowWithinLimit(t *testing.T) {
	sw, _ := newTestLimiter(3, time.Minute)

	assert.True(t, sw.Allow("k"))
	assert.True(t, sw.Allow("k"))
	assert.True(t, sw.Allow("k"))
	assert.False(t, sw.Allow("k"))
}

func TestTenthAllowedEleventhRejected(t *testing.T) {
	sw, clock := newTestLimiter(10, 60*time.Second)

	for i := 0; i < 10; i++ {
		assert.True(t, sw.Allow("notification:msg-1"), "attempt %d should pass", i+1)
		clock.advance(time.Second)
	}
	assert.False(t, sw.Allow("notification:msg-1"), "11th attempt within the window must be rejected")
}

func TestWindowSlides(t *testing.T) {
	sw, clock := newTestLimiter(2, time.Minute)

	assert.True(t, sw.Allow("k"))
	clock.advance(30 * time.Second)
	assert.True(t, sw.Allow("k"))
	assert.False(t, sw.Allow("k"))

	// first attempt ages out, freeing one slot
	clock.advance(31 * time.Second)
	assert.True(t, sw.Allow("k"))
	assert.False(t, sw.Allow("k"))
}

func TestKeysAreIndependent(t *testing.T) {
	sw, _ := newTestLimiter(1, time.Minute)

	assert.True(t, sw.Allow("a"))
	assert.True(t, sw.Allow("b"))
	assert.False(t, sw.Allow("a"))
	assert.False(t, sw.Allow("b"))
}

func TestRejectionDoesNotExtendWindow(t *testing.T) {
	sw, clock := newTestLimiter(1, time.Minute)

	assert.True(t, sw.Allow("k"))
	for i := 0; i < 5; i++ {
		clock.advance(10 * time.Second)
		assert.False(t, sw.Allow("k"))
	}
	// 60s after the single recorded attempt the key is admitted again
	clock.advance(11 * time.Second)
	assert.True(t, sw.Allow("k"))
}

func TestRemaining(t *testing.T) {
	sw, _ := newTestLimiter(3, time.Minute)

	assert.Equal(t, 3, sw.Remaining("k"))
	sw.Allow("k")
	assert.Equal(t, 2, sw.Remaining("k"))
	sw.Allow("k")
	sw.Allow("k")
	assert.Equal(t, 0, sw.Remaining("k"))
}

func TestResetAt(t *testing.T) {
	sw, clock := newTestLimiter(1, time.Minute)

	start := clock.current
	sw.Allow("k")
	assert.Equal(t, start.Add(time.Minute), sw.ResetAt("k"))

	// an untouched key resets immediately
	assert.Equal(t, clock.current, sw.ResetAt("other"))
}

func TestResetAndClearAll(t *testing.T) {
	sw, _ := newTestLimiter(1, time.Minute)

	sw.Allow("a")
	sw.Allow("b")
	assert.False(t, sw.Allow("a"))

	sw.Reset("a")
	assert.True(t, sw.Allow("a"))
	assert.False(t, sw.Allow("b"))

	sw.ClearAll()
	assert.True(t, sw.Allow("a"))
	assert.True(t, sw.Allow("b"))
}
