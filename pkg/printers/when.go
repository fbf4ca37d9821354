package printers

import (
	"time"

	"tableflip.dev/notiq/pkg/timeutil"
)

const (
	clock   = "3:04 PM"
	dayLong = "Mon, Jan 2"
)

// When renders t relative to now: "Today at 3:04 PM", "Tomorrow at 9:00 AM",
// or "Mon, Jan 2 at 3:04 PM". Dates outside now's year include the year.
func When(t, now time.Time) string {
	return Day(t, now) + " at " + t.In(now.Location()).Format(clock)
}

// Day renders the calendar day of t relative to now.
func Day(t, now time.Time) string {
	t = t.In(now.Location())
	switch {
	case timeutil.SameDay(t, now):
		return "Today"
	case timeutil.SameDay(t, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	case timeutil.SameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	case t.Year() != now.Year():
		return t.Format(dayLong + ", 2006")
	default:
		return t.Format(dayLong)
	}
}

// Span renders a start and end, dropping the end day when both fall on the
// same day.
func Span(start, end, now time.Time) string {
	if timeutil.SameDay(end, start.In(now.Location())) {
		return When(start, now) + " - " + end.In(now.Location()).Format(clock)
	}
	return When(start, now) + " - " + When(end, now)
}
