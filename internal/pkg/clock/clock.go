package clock

import (
	"time"

	"trustmrr/internal/domain"
)

// Clock tells services what day it is. Everything date-based takes a Clock
// so tests can pin "today".
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock whose calendar day is taken in loc
// (the business runs on IST; a booking "starts at midnight IST").
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time { return time.Now().In(s.loc) }

func (s *System) Today() time.Time { return domain.DateOf(s.Now()) }

type Fixed struct {
	At time.Time
}

func NewFixed(at time.Time) *Fixed { return &Fixed{At: at} }

func (f *Fixed) Now() time.Time { return f.At }

func (f *Fixed) Today() time.Time { return domain.DateOf(f.At) }
