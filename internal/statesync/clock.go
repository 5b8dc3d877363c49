package statesync

import "time"

// Clock abstracts timer scheduling so the debounce behavior can be tested
// without real time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

// RealClock schedules on the runtime timer wheel.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
