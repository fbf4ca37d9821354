package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/schedule"
	"tableflip.dev/notiq/pkg/timeutil"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Month prints a Sunday-first month grid. Days with tasks are bold, days with
// events are cyan, and today is underlined. The title is bold when the grid
// shows the current month.
func (pp *PrettyPrint) Month(days []schedule.Day) {
	if len(days) == 0 {
		return
	}
	out := pp.out()
	now := pp.now()
	first := days[0].Date

	tf := color.New(titleAttrs(first, now)...)
	title := first.Format("January 2006")
	mid := (width - len(title)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = fmt.Fprintln(out, tf.Sprintf("%s%s", strings.Repeat(" ", mid), title))
	_, _ = fmt.Fprintln(out, color.New(color.Faint).Sprint("Su Mo Tu We Th Fr Sa"))

	_, _ = fmt.Fprint(out, strings.Repeat("   ", schedule.LeadingBlanks(first)))
	d := first.Weekday()
	for _, day := range days {
		_, _ = fmt.Fprint(out, dayColor(day, now).Sprintf("%2d", day.Date.Day())+" ")
		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func titleAttrs(month, now time.Time) []color.Attribute {
	if timeutil.SameMonth(month, now) {
		return []color.Attribute{color.FgHiWhite, color.Bold}
	}
	return []color.Attribute{color.FgWhite, color.Italic}
}

func dayColor(day schedule.Day, now time.Time) *color.Color {
	attrs := []color.Attribute{}
	switch {
	case day.HasTasks && day.HasEvents:
		attrs = append(attrs, color.Bold, color.FgHiCyan)
	case day.HasTasks:
		attrs = append(attrs, color.Bold, color.FgHiWhite)
	case day.HasEvents:
		attrs = append(attrs, color.FgCyan)
	default:
		attrs = append(attrs, color.Faint, color.FgWhite)
	}
	if timeutil.SameDay(day.Date, now) {
		attrs = append(attrs, color.Underline)
	}
	return color.New(attrs...)
}
