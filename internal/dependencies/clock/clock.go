package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f using time.AfterFunc
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Serialized wraps a clock so fired timer callbacks are handed to submit
// instead of running on the timer goroutine.
func Serialized(c Clock, submit func(func())) Clock {
	return &serialClock{inner: c, submit: submit}
}

type serialClock struct {
	inner  Clock
	submit func(func())
}

func (c *serialClock) Now() time.Time {
	return c.inner.Now()
}

func (c *serialClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.inner.AfterFunc(d, func() {
		c.submit(f)
	})
}
