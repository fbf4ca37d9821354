package model

import "time"

// Item is either a task or an event, for listings that mix both.
type Item struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Task  *Task  `json:"task,omitempty" yaml:"task,omitempty"`
	Event *Event `json:"event,omitempty" yaml:"event,omitempty"`
}

// TaskItem wraps a task.
func TaskItem(t *Task) Item { return Item{Kind: KindTask, Task: t} }

// EventItem wraps an event.
func EventItem(e *Event) Item { return Item{Kind: KindEvent, Event: e} }

func (i Item) ID() string {
	if i.Kind == KindTask {
		return i.Task.ID
	}
	return i.Event.ID
}

func (i Item) Title() string {
	if i.Kind == KindTask {
		return i.Task.Title
	}
	return i.Event.Title
}

func (i Item) Description() string {
	if i.Kind == KindTask {
		return i.Task.Description
	}
	return i.Event.Description
}

// When is the due date of a task or the effective date of an event.
func (i Item) When() time.Time {
	if i.Kind == KindTask {
		return i.Task.Due
	}
	return i.Event.Effective()
}

func (i Item) Location() string {
	if i.Kind == KindTask {
		return i.Task.Location
	}
	return i.Event.Location
}

func (i Item) Address() string {
	if i.Kind == KindTask {
		return i.Task.Address
	}
	return i.Event.Address
}

func (i Item) IsFlagged() bool {
	if i.Kind == KindTask {
		return i.Task.Flagged
	}
	return i.Event.Flagged
}
