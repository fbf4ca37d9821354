// Package mcp provides the Model Context Protocol server integration for notiq.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/places"
	"tableflip.dev/notiq/pkg/printers"
	"tableflip.dev/notiq/pkg/schedule"
	"tableflip.dev/notiq/pkg/timeutil"
)

// Service adapts app.Service for MCP tools and resources.
type Service struct {
	App      *app.Service
	Searcher places.Searcher
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TaskDTO is a transport-friendly projection of a task.
type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Course      string `json:"course"`
	Description string `json:"description,omitempty"`
	Due         string `json:"due"`
	DueText     string `json:"dueText"`
	Location    string `json:"location,omitempty"`
	Address     string `json:"address,omitempty"`
	Flagged     bool   `json:"flagged"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completedAt,omitempty"`
	Overdue     bool   `json:"overdue"`
}

// EventDTO is a transport-friendly projection of an event.
type EventDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	AllDay      bool   `json:"allDay"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	When        string `json:"when"`
	Location    string `json:"location,omitempty"`
	Address     string `json:"address,omitempty"`
	Flagged     bool   `json:"flagged"`
}

// PlaceDTO is a transport-friendly projection of a study place.
type PlaceDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source,omitempty"`
}

// ItemDTO is one row of a mixed agenda listing.
type ItemDTO struct {
	Kind  string    `json:"kind"`
	Task  *TaskDTO  `json:"task,omitempty"`
	Event *EventDTO `json:"event,omitempty"`
}

// DayDTO lists everything on one calendar day.
type DayDTO struct {
	Date   string     `json:"date"`
	Tasks  []TaskDTO  `json:"tasks"`
	Events []EventDTO `json:"events"`
}

// TaskArgs are the task fields a tool call may set. Nil fields keep their
// current value on update.
type TaskArgs struct {
	Title       *string `json:"title"`
	Course      *string `json:"course"`
	Description *string `json:"description"`
	Due         *string `json:"due"`
	Location    *string `json:"location"`
	Address     *string `json:"address"`
	Flagged     *bool   `json:"flagged"`
}

// EventArgs are the event fields a tool call may set.
type EventArgs struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	AllDay      *bool   `json:"allDay"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Location    *string `json:"location"`
	Address     *string `json:"address"`
	Flagged     *bool   `json:"flagged"`
}

// NewService wraps a.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) check() error {
	if s.App == nil {
		return errors.New("store is not configured")
	}
	return nil
}

func str(v *string, into *string) {
	if v != nil {
		*into = *v
	}
}

func (a TaskArgs) input(base *model.Task, now time.Time) (app.TaskInput, error) {
	in := app.TaskInput{Due: now}
	if base != nil {
		in = app.TaskInput{
			Title:       base.Title,
			Course:      base.Course,
			Description: base.Description,
			Due:         base.Due,
			Location:    base.Location,
			Address:     base.Address,
			Flagged:     base.Flagged,
		}
	}
	str(a.Title, &in.Title)
	str(a.Course, &in.Course)
	str(a.Description, &in.Description)
	str(a.Location, &in.Location)
	str(a.Address, &in.Address)
	if a.Flagged != nil {
		in.Flagged = *a.Flagged
	}
	if a.Due != nil && strings.TrimSpace(*a.Due) != "" {
		due, err := timeutil.ParseWhen(*a.Due, now)
		if err != nil {
			return in, fmt.Errorf("invalid due value: %w", err)
		}
		in.Due = due
	}
	return in, nil
}

func parseOptional(name string, v *string, now time.Time) (*time.Time, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	if strings.TrimSpace(*v) == "" {
		return nil, true, nil
	}
	t, err := timeutil.ParseWhen(*v, now)
	if err != nil {
		return nil, true, fmt.Errorf("invalid %s value: %w", name, err)
	}
	return &t, true, nil
}

func (a EventArgs) input(base *model.Event, now time.Time) (app.EventInput, error) {
	in := app.EventInput{Date: timeutil.StartOfDay(now)}
	if base != nil {
		in = app.EventInput{
			Title:       base.Title,
			Description: base.Description,
			Flagged:     base.Flagged,
			AllDay:      base.AllDay,
			Date:        base.Date,
			Start:       base.Start,
			End:         base.End,
			Location:    base.Location,
			Address:     base.Address,
		}
	}
	str(a.Title, &in.Title)
	str(a.Description, &in.Description)
	str(a.Location, &in.Location)
	str(a.Address, &in.Address)
	if a.Flagged != nil {
		in.Flagged = *a.Flagged
	}
	if a.AllDay != nil {
		in.AllDay = *a.AllDay
	}
	start, set, err := parseOptional("start", a.Start, now)
	if err != nil {
		return in, err
	}
	if set {
		in.Start = start
		if start != nil && a.Date == nil {
			in.Date = timeutil.StartOfDay(*start)
		}
	}
	end, set, err := parseOptional("end", a.End, now)
	if err != nil {
		return in, err
	}
	if set {
		in.End = end
	}
	date, set, err := parseOptional("date", a.Date, now)
	if err != nil {
		return in, err
	}
	if set && date != nil {
		in.Date = timeutil.StartOfDay(*date)
	}
	return in, nil
}

// AddTask creates a task.
func (s *Service) AddTask(ctx context.Context, args TaskArgs) (*TaskDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	in, err := args.input(nil, s.now())
	if err != nil {
		return nil, err
	}
	t, err := s.App.AddTask(ctx, in)
	if err != nil {
		return nil, err
	}
	dto := s.taskDTO(t)
	return &dto, nil
}

// UpdateTask changes the fields set in args.
func (s *Service) UpdateTask(ctx context.Context, id string, args TaskArgs) (*TaskDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	base, ok := s.App.Snapshot().Task(id)
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, app.ErrNotFound)
	}
	in, err := args.input(base, s.now())
	if err != nil {
		return nil, err
	}
	t, err := s.App.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, err
	}
	dto := s.taskDTO(t)
	return &dto, nil
}

// SetTaskCompleted marks a task done or reopens it.
func (s *Service) SetTaskCompleted(ctx context.Context, id string, done bool) (*TaskDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var (
		t   *model.Task
		err error
	)
	if done {
		t, err = s.App.MarkTaskDone(ctx, id)
	} else {
		t, err = s.App.MarkTaskUndone(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	dto := s.taskDTO(t)
	return &dto, nil
}

// DeleteTask removes a task. Unknown ids are not an error.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.App.DeleteTask(ctx, id)
}

// ListTasks returns active or completed tasks, optionally limited to one day.
func (s *Service) ListTasks(ctx context.Context, completed bool, on *time.Time) ([]TaskDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	snap := s.App.Snapshot()
	tasks := snap.Tasks
	if completed {
		tasks = snap.Completed
	}
	if on != nil {
		if completed {
			tasks = schedule.TasksForDate(nil, tasks, *on)
		} else {
			tasks = schedule.TasksForDate(tasks, nil, *on)
		}
	}
	return s.taskDTOs(tasks), nil
}

// AddEvent creates an event.
func (s *Service) AddEvent(ctx context.Context, args EventArgs) (*EventDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	in, err := args.input(nil, s.now())
	if err != nil {
		return nil, err
	}
	e, err := s.App.AddEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	dto := s.eventDTO(e)
	return &dto, nil
}

// UpdateEvent changes the fields set in args.
func (s *Service) UpdateEvent(ctx context.Context, id string, args EventArgs) (*EventDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	base, ok := s.App.Snapshot().Event(id)
	if !ok {
		return nil, fmt.Errorf("event %q: %w", id, app.ErrNotFound)
	}
	in, err := args.input(base, s.now())
	if err != nil {
		return nil, err
	}
	e, err := s.App.UpdateEvent(ctx, id, in)
	if err != nil {
		return nil, err
	}
	dto := s.eventDTO(e)
	return &dto, nil
}

// DeleteEvent removes an event. Unknown ids are not an error.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.App.DeleteEvent(ctx, id)
}

// ListEvents returns every event, or those on one day.
func (s *Service) ListEvents(ctx context.Context, on *time.Time) ([]EventDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	events := s.App.Snapshot().Events
	if on != nil {
		events = schedule.EventsForDate(events, *on)
	}
	return s.eventDTOs(events), nil
}

// AddStudyPlace saves a place. With a query the location comes from the
// best search hit and fields in in override it.
func (s *Service) AddStudyPlace(ctx context.Context, in app.PlaceInput, query string) (*PlaceDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) != "" {
		res, err := s.SearchPlaces(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(res) == 0 {
			return nil, fmt.Errorf("no locations matched %q", query)
		}
		found := res[0].Input(in.Type, in.Custom)
		if in.Name != "" {
			found.Name = in.Name
		}
		in = found
	}
	p, err := s.App.AddStudyPlace(ctx, in)
	if err != nil {
		return nil, err
	}
	dto := placeDTO(p)
	return &dto, nil
}

// DeleteStudyPlace removes a place. Unknown ids are not an error.
func (s *Service) DeleteStudyPlace(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.App.DeleteStudyPlace(ctx, id)
}

// ListStudyPlaces returns every saved place.
func (s *Service) ListStudyPlaces(ctx context.Context) ([]PlaceDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	list := s.App.Snapshot().Places
	out := make([]PlaceDTO, 0, len(list))
	for _, p := range list {
		out = append(out, placeDTO(p))
	}
	return out, nil
}

// SearchPlaces resolves query into location candidates.
func (s *Service) SearchPlaces(ctx context.Context, query string) ([]places.Candidate, error) {
	if s.Searcher == nil {
		return nil, errors.New("location search is not configured")
	}
	res := places.Search(ctx, s.Searcher, query)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Candidates, nil
}

// Today returns the items due or happening today.
func (s *Service) Today(ctx context.Context) ([]ItemDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	snap := s.App.Snapshot()
	return s.itemDTOs(schedule.TodaysItems(snap.Tasks, snap.Events, s.now())), nil
}

// Upcoming returns the items in the days after today.
func (s *Service) Upcoming(ctx context.Context, days int) ([]ItemDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	snap := s.App.Snapshot()
	return s.itemDTOs(schedule.UpcomingItems(snap.Tasks, snap.Events, s.now(), days)), nil
}

// Day returns every task, active or completed, and event on date.
func (s *Service) Day(ctx context.Context, date time.Time) (*DayDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	snap := s.App.Snapshot()
	return &DayDTO{
		Date:   date.Format("2006-01-02"),
		Tasks:  s.taskDTOs(schedule.TasksForDate(snap.Tasks, snap.Completed, date)),
		Events: s.eventDTOs(schedule.EventsForDate(snap.Events, date)),
	}, nil
}

// ParseDate reads a tool supplied date relative to the service clock.
func (s *Service) ParseDate(v string) (time.Time, error) {
	return timeutil.ParseWhen(v, s.now())
}

func (s *Service) taskDTO(t *model.Task) TaskDTO {
	now := s.now()
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Course:      t.Course,
		Description: t.Description,
		Due:         t.Due.Format(time.RFC3339),
		DueText:     printers.When(t.Due, now),
		Location:    t.Location,
		Address:     t.Address,
		Flagged:     t.Flagged,
		Completed:   t.Completed,
		Overdue:     schedule.Overdue(t, now),
	}
	if !t.CompletedAt.IsZero() {
		dto.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

func (s *Service) taskDTOs(tasks []*model.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.taskDTO(t))
	}
	return out
}

func (s *Service) eventDTO(e *model.Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		AllDay:      e.AllDay,
		When:        printers.EventWhen(e, s.now()),
		Location:    e.Location,
		Address:     e.Address,
		Flagged:     e.Flagged,
	}
	if e.Start != nil {
		dto.Start = e.Start.Format(time.RFC3339)
	}
	if e.End != nil {
		dto.End = e.End.Format(time.RFC3339)
	}
	return dto
}

func (s *Service) eventDTOs(events []*model.Event) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, s.eventDTO(e))
	}
	return out
}

func (s *Service) itemDTOs(items []model.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dto := ItemDTO{Kind: it.Kind.String()}
		if it.Task != nil {
			t := s.taskDTO(it.Task)
			dto.Task = &t
		}
		if it.Event != nil {
			e := s.eventDTO(it.Event)
			dto.Event = &e
		}
		out = append(out, dto)
	}
	return out
}

func placeDTO(p *model.StudyPlace) PlaceDTO {
	return PlaceDTO{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		State:     p.State,
		Country:   p.Country,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Source:    p.Source,
	}
}
