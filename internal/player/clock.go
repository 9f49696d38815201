// ABOUTME: Monotonic audio clock abstraction
// ABOUTME: Lets tests drive scheduling deterministically
package player

import "time"

// Clock reports elapsed time on a monotonic scale. The scheduler never reads
// wall-clock time directly so tests can substitute a fake.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a monotonic clock starting at zero.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
