package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock returns Epoch, then advances one second per call.
//
// Runs recorded with the same clock carry identical timestamps, so journal
// listings can be compared against golden files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	ticks int64
}

// NewDeterministicClock creates a clock whose first Now() is Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Now returns the next instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
