package ledger

import (
	"time"

	"cloud.google.com/go/civil"
)

const (
	datesBack    = 30
	datesForward = 7
)

// DateOptions lists the dates offered for a cash entry: the 30 days before
// today, today, and the 7 days after, ascending.
func DateOptions(today civil.Date) []civil.Date {
	out := make([]civil.Date, 0, datesBack+datesForward+1)
	for i := -datesBack; i <= datesForward; i++ {
		out = append(out, today.AddDays(i))
	}
	return out
}

// Today returns the calendar date of now in loc. A nil loc means local time.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}
