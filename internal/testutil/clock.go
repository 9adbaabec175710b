package testutil

import (
	"sync"
	"time"

	"github.com/roach88/matcher/internal/predicate"
)

// Epoch is the start time of every DeterministicClock.
var Epoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe clock for date fixtures that advances
// one Step per call to Next.
//
// Thunk exposes the clock as a value source, so tests can observe that
// predicates read date attributes at evaluation time.
type DeterministicClock struct {
	mu    sync.Mutex
	ticks int64
	step  time.Duration
}

// NewDeterministicClock creates a clock at Epoch that advances by step.
// A non-positive step defaults to one hour.
func NewDeterministicClock(step time.Duration) *DeterministicClock {
	if step <= 0 {
		step = time.Hour
	}
	return &DeterministicClock{step: step}
}

// Next advances the clock and returns the new time.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return Epoch.Add(time.Duration(c.ticks) * c.step)
}

// Current returns the current time without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Epoch.Add(time.Duration(c.ticks) * c.step)
}

// Reset moves the clock back to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}

// Thunk returns a value source yielding Current at each call.
func (c *DeterministicClock) Thunk() predicate.Thunk {
	return func() any { return c.Current() }
}
