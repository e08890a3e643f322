package testing

import "sync/atomic"

// ManualClock is a controllable time source for tests. It hands out unix
// timestamps in whole seconds and only moves when Advance is called, so
// expiry boundaries can be tested without sleeping.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualClock struct {
	now atomic.Int64
}

// NewManualClock creates a manual clock starting at the given unix time.
func NewManualClock(start int64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

// Now returns the clock's current unix time in seconds.
func (c *ManualClock) Now() int64 {
	return c.now.Load()
}

// Advance moves the clock forward by the given number of seconds.
func (c *ManualClock) Advance(seconds int64) {
	c.now.Add(seconds)
}
