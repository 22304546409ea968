package hal

import "time"

// hostClock is a monotonic clock anchored at construction.
type hostClock struct {
	now   func() time.Time
	start time.Time
}

func newHostClock() *hostClock {
	return newHostClockWithNow(time.Now)
}

func newHostClockWithNow(now func() time.Time) *hostClock {
	return &hostClock{now: now, start: now()}
}

func (c *hostClock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}
