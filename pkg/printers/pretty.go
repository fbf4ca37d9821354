package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/places"
)

// PrettyPrint renders records as colored tables.
type PrettyPrint struct {
	ShowID bool
	Now    time.Time
	// Wrap is the description width. Zero disables descriptions.
	Wrap int
	Out  io.Writer
}

var (
	bold    = color.New(color.Bold)
	faint   = color.New(color.Faint, color.Italic)
	flagged = color.New(color.FgHiRed, color.Bold)
	overdue = color.New(color.FgRed)
	idColor = color.New(color.FgHiYellow, color.Italic, color.Faint)
	done    = color.New(color.Faint, color.CrossedOut)
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprintln(pp.out(), t.Sprint(title))
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	if count != 1 {
		noun += "s"
	}
	_, _ = fmt.Fprintf(pp.out(), "%s%s\n", t.Sprint(title), c.Sprintf(" - %d %s", count, noun))
}

func (pp *PrettyPrint) none() {
	_, _ = fmt.Fprint(pp.out(), faint.Sprint(" none\n\n"))
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	return tbl
}

func (pp *PrettyPrint) row(tbl *uitable.Table, id string, cells ...interface{}) {
	if pp.ShowID {
		cells = append([]interface{}{idColor.Sprint(id)}, cells...)
	}
	tbl.AddRow(cells...)
}

func (pp *PrettyPrint) flag(on bool) string {
	if on {
		return flagged.Sprint("!")
	}
	return " "
}

func (pp *PrettyPrint) describe(desc string) {
	if pp.Wrap <= 0 || strings.TrimSpace(desc) == "" {
		return
	}
	for _, line := range strings.Split(wordwrap.String(desc, pp.Wrap), "\n") {
		_, _ = fmt.Fprintln(pp.out(), faint.Sprint("    "+line))
	}
}

// Tasks prints tasks with their due times. Overdue active tasks are red.
func (pp *PrettyPrint) Tasks(tasks ...*model.Task) {
	if len(tasks) == 0 {
		pp.none()
		return
	}
	now := pp.now()
	tbl := pp.table()
	for _, t := range tasks {
		title := t.Title
		due := When(t.Due, now)
		switch {
		case t.Completed:
			title = done.Sprint(title)
		case t.Overdue(now):
			due = overdue.Sprint(due + " (overdue)")
		}
		pp.row(tbl, t.ID, pp.flag(t.Flagged), title, faint.Sprint(t.Course), due, place(t.Location, t.Address))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	if pp.Wrap > 0 {
		for _, t := range tasks {
			if t.Description != "" {
				_, _ = fmt.Fprintln(pp.out(), bold.Sprint(t.Title))
				pp.describe(t.Description)
			}
		}
	}
	pp.NewLine()
}

// Events prints events with their day or time window.
func (pp *PrettyPrint) Events(events ...*model.Event) {
	if len(events) == 0 {
		pp.none()
		return
	}
	now := pp.now()
	tbl := pp.table()
	for _, e := range events {
		pp.row(tbl, e.ID, pp.flag(e.Flagged), e.Title, EventWhen(e, now), place(e.Location, e.Address))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	if pp.Wrap > 0 {
		for _, e := range events {
			if e.Description != "" {
				_, _ = fmt.Fprintln(pp.out(), bold.Sprint(e.Title))
				pp.describe(e.Description)
			}
		}
	}
	pp.NewLine()
}

// EventWhen renders the day of an all-day event or the window of a timed one.
func EventWhen(e *model.Event, now time.Time) string {
	switch {
	case e.AllDay:
		return Day(e.Date, now) + " (all day)"
	case e.Timed():
		return Span(*e.Start, *e.End, now)
	case e.Start != nil:
		return When(*e.Start, now)
	default:
		return Day(e.Date, now)
	}
}

// Items prints a mixed task and event listing.
func (pp *PrettyPrint) Items(items ...model.Item) {
	if len(items) == 0 {
		pp.none()
		return
	}
	now := pp.now()
	tbl := pp.table()
	for _, it := range items {
		var when string
		switch it.Kind {
		case model.KindTask:
			when = When(it.Task.Due, now)
			if it.Task.Overdue(now) {
				when = overdue.Sprint(when + " (overdue)")
			}
		default:
			when = EventWhen(it.Event, now)
		}
		pp.row(tbl, it.ID(), pp.flag(it.IsFlagged()), faint.Sprint(string(it.Kind)), it.Title(), when, place(it.Location(), it.Address()))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Places prints saved study places.
func (pp *PrettyPrint) Places(list ...*model.StudyPlace) {
	if len(list) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, p := range list {
		name := p.Name
		if p.Source == model.SourceRemote {
			name += faint.Sprint(" (directory)")
		}
		pp.row(tbl, p.ID, name, faint.Sprint(p.Type), p.Region(), fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Candidates prints location search hits numbered from 1.
func (pp *PrettyPrint) Candidates(list ...places.Candidate) {
	if len(list) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for i, c := range list {
		region := strings.Trim(c.State+", "+c.Country, ", ")
		tbl.AddRow(faint.Sprintf("%d", i+1), c.Name, region, fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Report prints completed tasks grouped by course.
func (pp *PrettyPrint) Report(result app.ReportResult, label string) {
	since := result.Since.Local().Format("2006-01-02 15:04")
	until := result.Until.Local().Format("2006-01-02 15:04")
	_, _ = fmt.Fprintf(pp.out(), "Report · last %s (%s → %s)\n", label, since, until)

	if result.Total == 0 {
		_, _ = fmt.Fprintln(pp.out(), "  No completed tasks found in this window.")
		pp.NewLine()
		return
	}
	for _, section := range result.Sections {
		_, _ = fmt.Fprintf(pp.out(), "\n%s\n", bold.Sprint(section.Course))
		for _, t := range section.Tasks {
			_, _ = fmt.Fprintf(pp.out(), "  %s %s  %s\n", pp.flag(t.Flagged), t.Title,
				faint.Sprintf("(completed %s)", t.CompletedAt.Local().Format("2006-01-02 15:04")))
		}
	}
	pp.NewLine()
}

func place(location, address string) string {
	switch {
	case location == "":
		return address
	case address == "":
		return location
	default:
		return location + faint.Sprint(" · "+address)
	}
}
