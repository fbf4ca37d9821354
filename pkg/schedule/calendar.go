package schedule

import (
	"time"

	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/timeutil"
)

// Day is one cell of a month grid.
type Day struct {
	Date      time.Time
	HasTasks  bool
	HasEvents bool
}

// MonthDays lays out every day of month's month with task and event markers.
func MonthDays(month time.Time, active, completed []*model.Task, events []*model.Event) []Day {
	first := timeutil.FirstOfMonth(month)
	n := timeutil.DaysIn(first)
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		d := first.AddDate(0, 0, i)
		days = append(days, Day{
			Date:      d,
			HasTasks:  TasksOnDate(active, completed, d),
			HasEvents: EventsOnDate(events, d),
		})
	}
	return days
}

// LeadingBlanks is the number of empty cells before the first of month in a
// Sunday-first week grid.
func LeadingBlanks(month time.Time) int {
	return int(timeutil.FirstOfMonth(month).Weekday())
}
