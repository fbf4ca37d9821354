package schedule

import (
	"sort"
	"time"

	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/timeutil"
)

// DefaultUpcomingWindow is the number of days after today "coming up" covers.
const DefaultUpcomingWindow = 3

// eventOnDay reports whether e belongs to the calendar day [dayStart, dayEnd).
// All-day events and events without a full window match on their primary
// date; timed events match when their window overlaps the day. An empty
// window is an instant and belongs to the day it falls in.
func eventOnDay(e *model.Event, dayStart, dayEnd time.Time) bool {
	if e.Timed() {
		if e.Start.Equal(*e.End) {
			return !e.Start.Before(dayStart) && e.Start.Before(dayEnd)
		}
		return e.Start.Before(dayEnd) && e.End.After(dayStart)
	}
	return timeutil.SameDay(e.Date, dayStart)
}

// EventsOnDate reports whether any event falls on date's calendar day.
func EventsOnDate(events []*model.Event, date time.Time) bool {
	start, end := timeutil.DayWindow(date)
	for _, e := range events {
		if eventOnDay(e, start, end) {
			return true
		}
	}
	return false
}

// TasksOnDate reports whether any task, active or completed, is due on date's
// calendar day.
func TasksOnDate(active, completed []*model.Task, date time.Time) bool {
	for _, list := range [][]*model.Task{active, completed} {
		for _, t := range list {
			if timeutil.SameDay(t.Due, date) {
				return true
			}
		}
	}
	return false
}

// EventsForDate returns the events on date's calendar day, flagged first then
// by effective time.
func EventsForDate(events []*model.Event, date time.Time) []*model.Event {
	start, end := timeutil.DayWindow(date)
	out := make([]*model.Event, 0)
	for _, e := range events {
		if eventOnDay(e, start, end) {
			out = append(out, e)
		}
	}
	SortEvents(out)
	return out
}

// TasksForDate returns active and completed tasks due on date's calendar day,
// flagged first then by due time.
func TasksForDate(active, completed []*model.Task, date time.Time) []*model.Task {
	out := make([]*model.Task, 0)
	for _, list := range [][]*model.Task{active, completed} {
		for _, t := range list {
			if timeutil.SameDay(t.Due, date) {
				out = append(out, t)
			}
		}
	}
	SortTasks(out)
	return out
}

// TodaysItems returns active tasks due today and events occurring today.
func TodaysItems(active []*model.Task, events []*model.Event, now time.Time) []model.Item {
	start, end := timeutil.DayWindow(now)
	items := make([]model.Item, 0)
	for _, t := range active {
		if timeutil.SameDay(t.Due, now) {
			items = append(items, model.TaskItem(t))
		}
	}
	for _, e := range events {
		if eventOnDay(e, start, end) {
			items = append(items, model.EventItem(e))
		}
	}
	SortItems(items)
	return items
}

// UpcomingItems returns active tasks and events whose calendar day is after
// today and no more than windowDays days ahead. Items are grouped by day, then
// flagged first, then by time. A windowDays below one uses the default.
func UpcomingItems(active []*model.Task, events []*model.Event, now time.Time, windowDays int) []model.Item {
	if windowDays < 1 {
		windowDays = DefaultUpcomingWindow
	}
	today := timeutil.StartOfDay(now)
	limit := today.AddDate(0, 0, windowDays+1)
	loc := now.Location()

	inWindow := func(t time.Time) bool {
		day := timeutil.StartOfDay(t.In(loc))
		return day.After(today) && day.Before(limit)
	}

	items := make([]model.Item, 0)
	for _, t := range active {
		if inWindow(t.Due) {
			items = append(items, model.TaskItem(t))
		}
	}
	for _, e := range events {
		if inWindow(e.Effective()) {
			items = append(items, model.EventItem(e))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		di := timeutil.StartOfDay(items[i].When().In(loc))
		dj := timeutil.StartOfDay(items[j].When().In(loc))
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ItemLess(items[i], items[j])
	})
	return items
}

// Overdue reports whether t is active and due before now.
func Overdue(t *model.Task, now time.Time) bool {
	return t != nil && t.Overdue(now)
}

// OverdueTasks returns the active tasks due before now, most overdue first.
func OverdueTasks(active []*model.Task, now time.Time) []*model.Task {
	out := make([]*model.Task, 0)
	for _, t := range active {
		if Overdue(t, now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out
}
