package testutil

import (
	"sync"
	"time"
)

// Clock is a controllable time source for tests. It satisfies the Clock
// interface of the notify package, so toast expiry can be stepped
// deterministically.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock at the given time, defaulting to a fixed point
// (2026-01-01 00:00:00 UTC) so test output is stable.
func NewClock(now ...time.Time) *Clock {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if len(now) > 0 {
		t = now[0]
	}
	return &Clock{now: t}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set overrides the clock's current time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Since reports the elapsed clock time from t.
func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}
