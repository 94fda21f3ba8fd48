package clock

import "time"

// Clock is the time source for activity tracking and proposal timestamps
//
//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/KirkDiggler/nomic/internal/common/clock Clock
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// New creates a system clock
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock that always reports the same instant until moved
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant
func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance moves the fixed instant forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
