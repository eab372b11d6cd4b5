// Package timeutil provides a testable clock and timestamp normalisation for
// state-vector queries.
package timeutil

import (
	"sync"
	"time"
)

// Clock supplies import times and render-run stamps.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// MockClock is a manually advanced clock for tests.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// RunStamp names one render run in output directories, e.g. 20260115T103000Z.
func RunStamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
