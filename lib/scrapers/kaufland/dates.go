package kaufland

import (
	"dealcrawl-backend/lib/deals"
	"regexp"
	"strconv"
	"time"
)

var validRangeRegex = regexp.MustCompile(`(?i)vom\s*(\d{1,2})\s*\.\s*(\d{1,2})\s*\.?\s*bis\s*(\d{1,2})\s*\.\s*(\d{1,2})\b`)

type dayMonth struct {
	day   int
	month time.Month
}

func (d dayMonth) before(other dayMonth) bool {
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// resolve returns midnight of the day in the given year, failing if the
// day does not exist in that year (ex. 31.02. or 29.02. in a non leap year).
func (d dayMonth) resolve(year int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, d.month, d.day, 0, 0, 0, 0, loc)
	if t.Day() != d.day || t.Month() != d.month {
		return time.Time{}, false
	}
	return t, true
}

func parseDayMonth(dayStr, monthStr string) (dayMonth, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return dayMonth{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return dayMonth{}, false
	}
	return dayMonth{day: day, month: time.Month(month)}, true
}

// ExtractValidRange finds a "vom DD.MM. bis DD.MM." phrase in text and
// resolves it to dates relative to `now`. Anything that cannot be parsed
// yields an unknown window.
//
// The page never carries a year. When the end precedes the start the
// window wraps over new year: if `now` is already in the months leading
// up to the end, the start belongs to last year, otherwise the end
// belongs to next year.
func ExtractValidRange(text string, now time.Time) deals.ValidityWindow {
	match := validRangeRegex.FindStringSubmatch(text)
	if match == nil {
		return deals.ValidityWindow{}
	}
	start, ok := parseDayMonth(match[1], match[2])
	if !ok {
		return deals.ValidityWindow{}
	}
	end, ok := parseDayMonth(match[3], match[4])
	if !ok {
		return deals.ValidityWindow{}
	}

	startYear := now.Year()
	endYear := now.Year()
	if end.before(start) {
		if now.Month() <= end.month {
			startYear--
		} else {
			endYear++
		}
	}

	from, ok := start.resolve(startYear, now.Location())
	if !ok {
		return deals.ValidityWindow{}
	}
	until, ok := end.resolve(endYear, now.Location())
	if !ok {
		return deals.ValidityWindow{}
	}
	return deals.ValidityWindow{From: &from, Until: &until}
}
