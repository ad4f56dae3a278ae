package protocol

import "time"

// Clock supplies wall-clock time to the engines. Injecting it keeps window
// gating testable with fixed timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}
