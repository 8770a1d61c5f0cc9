package services

import (
	"time"

	"github.com/hospoda/shiftboard/internal/models"
)

// Clock supplies "now" in the venue's timezone. Shift dates are local
// calendar days, so "today" must not be computed in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

func (c Clock) Today() string {
	return c.now().Format(models.DateLayout)
}

func (c Clock) DaysFromToday(days int) string {
	return c.now().AddDate(0, 0, days).Format(models.DateLayout)
}
