// AngelaMos | 2026
// clock.go

package core

import "time"

// Clock abstracts the wall clock so time-dependent logic (webhook
// renewal dates, subscription expiry sweeps, rate windows) is
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func NewClock() Clock {
	return realClock{}
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
