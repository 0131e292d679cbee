// Package clock abstracts wall-clock time so run durations can be tested.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock returns a fixed time that only moves when advanced.
type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the mock clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// StepClock is a MockClock that advances by Step after every Now call.
// It lets callers that measure elapsed time observe a deterministic duration.
type StepClock struct {
	MockClock
	Step time.Duration
}

func (c *StepClock) Now() time.Time {
	now := c.CurrentTime
	c.Advance(c.Step)
	return now
}
