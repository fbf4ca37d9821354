package model

import "time"

// Task is a reminder with a due date. A task is either active or completed,
// never both.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Course      string    `json:"course" validate:"required"`
	Description string    `json:"description,omitempty"`
	Due         time.Time `json:"due"`
	Location    string    `json:"location,omitempty"`
	Address     string    `json:"address,omitempty"`
	Flagged     bool      `json:"flagged,omitempty"`
	Completed   bool      `json:"completed,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
	Created     time.Time `json:"created"`
}

func (t *Task) RecordKind() Kind { return KindTask }
func (t *Task) RecordID() string { return t.ID }

// Clone returns a copy safe to mutate without touching t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// Overdue reports whether an active task is past its due time.
func (t *Task) Overdue(now time.Time) bool {
	return !t.Completed && t.Due.Before(now)
}
