package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/store"
)

// EventInput carries the user-editable fields of an event. Start and End are
// ignored for all-day events.
type EventInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Flagged     bool       `json:"flagged,omitempty"`
	AllDay      bool       `json:"allDay,omitempty"`
	Date        time.Time  `json:"date"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Location    string     `json:"location,omitempty"`
	Address     string     `json:"address,omitempty"`
}

func (in EventInput) apply(e *model.Event) {
	trim(&in.Title, &in.Description, &in.Location, &in.Address)
	e.Title = in.Title
	e.Description = in.Description
	e.Flagged = in.Flagged
	e.AllDay = in.AllDay
	e.Date = in.Date
	e.Start, e.End = nil, nil
	if in.Start != nil {
		start := *in.Start
		e.Start = &start
	}
	if in.End != nil {
		end := *in.End
		e.End = &end
	}
	e.Location = in.Location
	e.Address = in.Address
	e.Normalize()
}

// AddEvent creates a new event.
func (s *Service) AddEvent(ctx context.Context, in EventInput) (*model.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	e := &model.Event{ID: uuid.NewString(), Created: s.now()}
	in.apply(e)
	if err := check(e); err != nil {
		return nil, reject("add_event", err)
	}

	s.lock()
	defer s.unlock()
	if err := s.commit(ctx, "add_event", func(p store.Persistence) error {
		return p.Insert(e)
	}); err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

// UpdateEvent overwrites the editable fields of event id.
func (s *Service) UpdateEvent(ctx context.Context, id string, in EventInput) (*model.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	cur, ok := snap.Event(id)
	if !ok {
		return nil, reject("update_event", notFound(model.KindEvent, id))
	}
	e := cur.Clone()
	in.apply(e)
	if err := check(e); err != nil {
		return nil, reject("update_event", err)
	}
	if err := s.commit(ctx, "update_event", func(p store.Persistence) error {
		return p.Update(e)
	}); err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

// DeleteEvent removes event id. Unknown ids are ignored.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Event(id); !ok {
		return nil
	}
	return s.commit(ctx, "delete_event", func(p store.Persistence) error {
		_, err := p.DeleteWhere(model.KindEvent, byID(id))
		return err
	})
}
