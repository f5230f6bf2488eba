package account

import (
	"sync"
	"time"
)

// Clock stamps profile writes.
type Clock interface {
	Now() time.Time
}

// MonotonicClock returns UTC times at microsecond resolution that never repeat
// or go backwards, even when the wall clock does.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
