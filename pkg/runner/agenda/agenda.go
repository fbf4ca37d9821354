// Package agenda prints the time based views: today, what is coming up, a
// month calendar and the completion report.
package agenda

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/printers"
	"tableflip.dev/notiq/pkg/schedule"
	"tableflip.dev/notiq/pkg/timeutil"
)

// Agenda runs the schedule views over a Service snapshot.
type Agenda struct {
	Service *app.Service
	Output  string
	ShowID  bool
	Wrap    int
	Now     time.Time
	Out     io.Writer
}

// DayView is the structured form of Today.
type DayView struct {
	Date    time.Time     `json:"date" yaml:"date"`
	Overdue []*model.Task `json:"overdue" yaml:"overdue"`
	Items   []model.Item  `json:"items" yaml:"items"`
}

// MonthView is the structured form of Calendar.
type MonthView struct {
	Month  time.Time      `json:"month" yaml:"month"`
	Days   []schedule.Day `json:"days" yaml:"days"`
	Tasks  []*model.Task  `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Events []*model.Event `json:"events,omitempty" yaml:"events,omitempty"`
}

func (a *Agenda) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return color.Output
}

func (a *Agenda) now() time.Time {
	if a.Now.IsZero() {
		return time.Now()
	}
	return a.Now
}

func (a *Agenda) pp() *printers.PrettyPrint {
	return &printers.PrettyPrint{ShowID: a.ShowID, Now: a.now(), Wrap: a.Wrap, Out: a.out()}
}

func (a *Agenda) check() error {
	if a.Service == nil {
		return errors.New("agenda: no service configured")
	}
	return nil
}

// Today prints overdue tasks, then the tasks and events for today.
func (a *Agenda) Today(ctx context.Context) error {
	if err := a.check(); err != nil {
		return err
	}
	now := a.now()
	snap := a.Service.Snapshot()
	view := DayView{
		Date:    timeutil.StartOfDay(now),
		Overdue: overdueBeforeToday(snap.Tasks, now),
		Items:   schedule.TodaysItems(snap.Tasks, snap.Events, now),
	}
	return printers.Emit(a.out(), a.Output, view, func() {
		pp := a.pp()
		if len(view.Overdue) > 0 {
			pp.TitleWithCount("Overdue", len(view.Overdue), "task")
			pp.Tasks(view.Overdue...)
		}
		pp.TitleWithCount("Today · "+now.Format("Monday, January 2"), len(view.Items), "item")
		pp.Items(view.Items...)
	})
}

// overdueBeforeToday keeps overdue tasks that are not already listed today.
func overdueBeforeToday(active []*model.Task, now time.Time) []*model.Task {
	start := timeutil.StartOfDay(now)
	var out []*model.Task
	for _, t := range schedule.OverdueTasks(active, now) {
		if t.Due.Before(start) {
			out = append(out, t)
		}
	}
	return out
}

// Upcoming prints the items in the days after today. A days below one uses
// the default window.
func (a *Agenda) Upcoming(ctx context.Context, days int) error {
	if err := a.check(); err != nil {
		return err
	}
	if days < 1 {
		days = schedule.DefaultUpcomingWindow
	}
	snap := a.Service.Snapshot()
	items := schedule.UpcomingItems(snap.Tasks, snap.Events, a.now(), days)
	return printers.Emit(a.out(), a.Output, items, func() {
		pp := a.pp()
		pp.TitleWithCount("Coming up", len(items), "item")
		pp.Items(items...)
	})
}

// Calendar prints month's grid. When on is set the tasks and events of that
// day follow the grid.
func (a *Agenda) Calendar(ctx context.Context, month time.Time, on *time.Time) error {
	if err := a.check(); err != nil {
		return err
	}
	snap := a.Service.Snapshot()
	view := MonthView{
		Month: timeutil.FirstOfMonth(month),
		Days:  schedule.MonthDays(month, snap.Tasks, snap.Completed, snap.Events),
	}
	if on != nil {
		view.Tasks = schedule.TasksForDate(snap.Tasks, snap.Completed, *on)
		view.Events = schedule.EventsForDate(snap.Events, *on)
	}
	return printers.Emit(a.out(), a.Output, view, func() {
		pp := a.pp()
		pp.Title(view.Month.Format("January 2006"))
		pp.Month(view.Days)
		if on == nil {
			return
		}
		day := printers.Day(*on, a.now())
		pp.TitleWithCount("Tasks · "+day, len(view.Tasks), "task")
		pp.Tasks(view.Tasks...)
		pp.TitleWithCount("Events · "+day, len(view.Events), "event")
		pp.Events(view.Events...)
	})
}

// Report prints the tasks completed inside the window ending now. window is
// a duration such as "1w" or "2d12h"; empty means thirty days.
func (a *Agenda) Report(ctx context.Context, window string) error {
	if err := a.check(); err != nil {
		return err
	}
	d, label, err := timeutil.ParseWindow(window)
	if err != nil {
		return err
	}
	until := a.now()
	result := a.Service.Report(until.Add(-d), until)
	return printers.Emit(a.out(), a.Output, result, func() {
		a.pp().Report(result, label)
	})
}
