package timeutil

import (
	"fmt"
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
}

const layoutShort = "1/2"

// ParseWhen reads a user supplied date or date-time in loc. Date-only values
// resolve to local midnight. The short "1/2" form takes the current year, or
// next year when the day has already passed.
func ParseWhen(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	loc := now.Location()
	for _, layout := range layouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, v)
			if err == nil {
				return t.In(loc), nil
			}
			continue
		}
		t, err = time.ParseInLocation(layout, v, loc)
		if err == nil {
			return t, nil
		}
	}
	t, err := time.ParseInLocation(layoutShort, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", v)
	}
	t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	// 1/3 typed on 12/5 means next January.
	if t.Before(StartOfDay(now)) {
		t = t.AddDate(1, 0, 0)
	}
	return t, nil
}

// ParseMonth reads "2006-01" (or "2006-1") into the first of that month in loc.
func ParseMonth(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01", "2006-1"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized month %q, want YYYY-MM", v)
}
