// Package schedule derives the sorted, date-filtered views of tasks and events.
// Every ordering puts flagged items first and only then compares time.
package schedule

import (
	"sort"

	"tableflip.dev/notiq/pkg/model"
)

// TaskLess orders flagged tasks first, then by ascending due date.
func TaskLess(a, b *model.Task) bool {
	if a.Flagged != b.Flagged {
		return a.Flagged
	}
	if !a.Due.Equal(b.Due) {
		return a.Due.Before(b.Due)
	}
	return a.ID < b.ID
}

// EventLess orders flagged events first, then by ascending effective date.
func EventLess(a, b *model.Event) bool {
	if a.Flagged != b.Flagged {
		return a.Flagged
	}
	at, bt := a.Effective(), b.Effective()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.ID < b.ID
}

// ItemLess orders mixed items flagged first, then by When.
func ItemLess(a, b model.Item) bool {
	if a.IsFlagged() != b.IsFlagged() {
		return a.IsFlagged()
	}
	at, bt := a.When(), b.When()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.ID() < b.ID()
}

// SortTasks sorts tasks in place with TaskLess.
func SortTasks(tasks []*model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return TaskLess(tasks[i], tasks[j]) })
}

// SortEvents sorts events in place with EventLess.
func SortEvents(events []*model.Event) {
	sort.SliceStable(events, func(i, j int) bool { return EventLess(events[i], events[j]) })
}

// SortItems sorts items in place with ItemLess.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool { return ItemLess(items[i], items[j]) })
}
