package testutil

import "sync"

// ManualClock is a thread-safe manual clock for tests, implementing
// record.Clock. Time only moves when the test advances it, so stored
// timestamps are fully deterministic.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a clock frozen at the given epoch-millisecond
// time.
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// NowMillis returns the current frozen time.
func (c *ManualClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to an absolute time.
func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by delta milliseconds and returns the
// new time.
func (c *ManualClock) Advance(delta int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += delta
	return c.now
}
