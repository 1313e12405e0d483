package timezone

import (
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(err)
	}
}

// offers are published in german local time, validity dates and the
// expiry cutoff must be computed from <time.Time>.Year()/Month()/Day()
// in that zone regardless of where the process runs.
func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay returns midnight of the day `t` falls on in the store's zone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

// Date returns midnight of the given calendar day in the store's zone.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Location)
}
