package domain

import "time"

// Clock supplies the current instant. Derived-state computations take a Clock
// instead of calling time.Now directly so tests can pin the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
