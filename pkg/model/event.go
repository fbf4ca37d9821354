package model

import "time"

// Event is a calendar entry. All-day events carry only Date; timed events may
// carry a Start/End window.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Flagged     bool       `json:"flagged,omitempty"`
	AllDay      bool       `json:"allDay,omitempty"`
	Date        time.Time  `json:"date"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Location    string     `json:"location,omitempty"`
	Address     string     `json:"address,omitempty"`
	Created     time.Time  `json:"created"`
}

func (e *Event) RecordKind() Kind { return KindEvent }
func (e *Event) RecordID() string { return e.ID }

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Start != nil {
		s := *e.Start
		cp.Start = &s
	}
	if e.End != nil {
		end := *e.End
		cp.End = &end
	}
	return &cp
}

// Effective is the start time when one is set, otherwise the primary date.
func (e *Event) Effective() time.Time {
	if e.Start != nil {
		return *e.Start
	}
	return e.Date
}

// Timed reports whether the event has a full start/end window.
func (e *Event) Timed() bool {
	return !e.AllDay && e.Start != nil && e.End != nil
}

// Normalize clears the window of all-day events.
func (e *Event) Normalize() {
	if e.AllDay {
		e.Start = nil
		e.End = nil
	}
}
