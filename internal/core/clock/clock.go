// Package clock provides the current date/time source.
package clock

import "time"

// Clock returns the current time. Posting validation and cancellation
// timestamps go through it so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// System is the wall clock in a fixed location.
type System struct {
	Location *time.Location
}

// NewSystem creates a wall clock. A nil location means UTC.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{Location: loc}
}

// Now implements Clock.
func (s System) Now() time.Time {
	return time.Now().In(s.Location)
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
