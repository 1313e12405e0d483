package chrono

import (
	"dealcrawl-backend/lib/timezone"
	"time"
)

// Clock is the source of "now" for anything that stamps or compares dates.
//
// note: fault injection point
type Clock interface {
	Now() time.Time
}

// StandardClock reads the wall clock in the store's time zone.
type StandardClock struct{}

func (StandardClock) Now() time.Time {
	return timezone.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
