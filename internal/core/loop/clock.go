package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock measures the time between successive Delta calls.
type Clock struct {
	now  func() time.Time
	last time.Time
}

func NewClock() *Clock {
	return newClock(time.Now)
}

func newClock(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Delta returns the time since the previous call, or zero on the first call.
func (c *Clock) Delta() time.Duration {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	d := t.Sub(c.last)
	c.last = t
	return d
}

// RateCounter counts events per second. Rate reports the count of the last
// completed one second window.
type RateCounter struct {
	mu      sync.Mutex
	window  time.Time
	count   int
	current atomic.Int64
}

func (r *RateCounter) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.window.IsZero() {
		r.window = now
	}
	if elapsed := now.Sub(r.window); elapsed >= time.Second {
		r.current.Store(int64(r.count))
		r.count = 0
		r.window = now
	}
	r.count++
}

func (r *RateCounter) Rate() int {
	return int(r.current.Load())
}
