package core

import "time"

// Clock is the engine's only time source. Injecting it keeps every
// temporal rule (recurrence, statistics windows, timer expiry) testable
// with a fixed or stepped clock.
type Clock interface {
	Now() time.Time
}

// systemClock implements Clock with the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock { return systemClock{} }
