package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/store"
)

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string    `json:"title"`
	Course      string    `json:"course"`
	Description string    `json:"description,omitempty"`
	Due         time.Time `json:"due"`
	Location    string    `json:"location,omitempty"`
	Address     string    `json:"address,omitempty"`
	Flagged     bool      `json:"flagged,omitempty"`
}

func (in TaskInput) apply(t *model.Task) {
	trim(&in.Title, &in.Course, &in.Description, &in.Location, &in.Address)
	t.Title = in.Title
	t.Course = in.Course
	t.Description = in.Description
	t.Due = in.Due
	t.Location = in.Location
	t.Address = in.Address
	t.Flagged = in.Flagged
}

// AddTask creates a new active task.
func (s *Service) AddTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	t := &model.Task{ID: uuid.NewString(), Created: s.now()}
	in.apply(t)
	if err := check(t); err != nil {
		return nil, reject("add_task", err)
	}

	s.lock()
	defer s.unlock()
	if err := s.commit(ctx, "add_task", func(p store.Persistence) error {
		return p.Insert(t)
	}); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// UpdateTask overwrites the editable fields of task id, keeping its identity
// and completion state.
func (s *Service) UpdateTask(ctx context.Context, id string, in TaskInput) (*model.Task, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	cur, ok := snap.Task(id)
	if !ok {
		return nil, reject("update_task", notFound(model.KindTask, id))
	}
	t := cur.Clone()
	in.apply(t)
	if err := check(t); err != nil {
		return nil, reject("update_task", err)
	}
	if err := s.commit(ctx, "update_task", func(p store.Persistence) error {
		return p.Update(t)
	}); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// DeleteTask removes task id from whichever partition holds it. Unknown ids
// are ignored.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Task(id); !ok {
		return nil
	}
	return s.commit(ctx, "delete_task", func(p store.Persistence) error {
		_, err := p.DeleteWhere(model.KindTask, byID(id))
		return err
	})
}

// MarkTaskDone moves task id to the completed partition.
func (s *Service) MarkTaskDone(ctx context.Context, id string) (*model.Task, error) {
	return s.setCompleted(ctx, "complete_task", id, true)
}

// MarkTaskUndone moves task id back to the active partition.
func (s *Service) MarkTaskUndone(ctx context.Context, id string) (*model.Task, error) {
	return s.setCompleted(ctx, "reopen_task", id, false)
}

func (s *Service) setCompleted(ctx context.Context, op, id string, done bool) (*model.Task, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	cur, ok := snap.Task(id)
	if !ok {
		return nil, reject(op, notFound(model.KindTask, id))
	}
	if cur.Completed == done {
		return cur.Clone(), nil
	}
	t := cur.Clone()
	t.Completed = done
	if done {
		t.CompletedAt = s.now()
	} else {
		t.CompletedAt = time.Time{}
	}
	if err := s.commit(ctx, op, func(p store.Persistence) error {
		return p.Update(t)
	}); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

func byID(id string) func(model.Record) bool {
	return func(r model.Record) bool { return r.RecordID() == id }
}
