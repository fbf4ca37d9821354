// Package app owns the in-memory task, event and study place collections and
// keeps them in sync with persistence. UIs and CLIs share it.
package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/metrics"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/schedule"
	"tableflip.dev/notiq/pkg/store"
)

// Snapshot is a consistent view of every collection. Slices and records in a
// snapshot are shared with other readers and must not be modified.
type Snapshot struct {
	Tasks     []*model.Task       `json:"tasks"`
	Completed []*model.Task       `json:"completed"`
	Events    []*model.Event      `json:"events"`
	Places    []*model.StudyPlace `json:"places"`
}

// Task finds a task in either partition.
func (s Snapshot) Task(id string) (*model.Task, bool) {
	for _, list := range [][]*model.Task{s.Tasks, s.Completed} {
		for _, t := range list {
			if t.ID == id {
				return t, true
			}
		}
	}
	return nil, false
}

// Event finds an event by id.
func (s Snapshot) Event(id string) (*model.Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Place finds a study place by id.
func (s Snapshot) Place(id string) (*model.StudyPlace, bool) {
	for _, p := range s.Places {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Service provides the mutating operations over the collections. Mutations are
// serialized and each one persists, then reloads, then swaps in a new
// snapshot. Readers never block on writers.
type Service struct {
	Persistence store.Persistence
	// Clock stamps created and completed times. Defaults to time.Now.
	Clock func() time.Time

	mu      sync.Mutex
	changed bool
	snap    atomic.Pointer[Snapshot]
	seq     atomic.Uint64
	applied uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns a Service over p with its collections loaded.
func New(ctx context.Context, p store.Persistence) (*Service, error) {
	s := &Service{Persistence: p}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Snapshot returns the current view. It is empty until the first load.
func (s *Service) Snapshot() Snapshot {
	if p := s.snap.Load(); p != nil {
		return *p
	}
	return Snapshot{}
}

// Subscribe registers fn to be called with every new snapshot. Callbacks run
// after the mutation that produced the snapshot has released the Service, so
// they may call back into it. The returned func removes the subscription.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) lock() {
	s.mu.Lock()
}

// unlock releases mu and then tells subscribers about any snapshot swapped in
// while it was held.
func (s *Service) unlock() {
	changed := s.changed
	s.changed = false
	s.mu.Unlock()
	if changed {
		s.notify(s.Snapshot())
	}
}

func (s *Service) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Reload re-derives every collection from persistence.
func (s *Service) Reload(ctx context.Context) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	s.lock()
	defer s.unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) error {
	tasks, err := store.FetchAll[*model.Task](ctx, s.Persistence, nil)
	if err != nil {
		return err
	}
	events, err := store.FetchAll[*model.Event](ctx, s.Persistence, nil)
	if err != nil {
		return err
	}
	places, err := store.FetchAll[*model.StudyPlace](ctx, s.Persistence, nil)
	if err != nil {
		return err
	}

	next := &Snapshot{
		Tasks:     make([]*model.Task, 0, len(tasks)),
		Completed: make([]*model.Task, 0),
		Events:    events,
		Places:    places,
	}
	for _, t := range tasks {
		if t.Completed {
			next.Completed = append(next.Completed, t)
		} else {
			next.Tasks = append(next.Tasks, t)
		}
	}
	schedule.SortTasks(next.Tasks)
	schedule.SortTasks(next.Completed)
	schedule.SortEvents(next.Events)
	sort.SliceStable(next.Places, func(i, j int) bool {
		a, b := strings.ToLower(next.Places[i].Name), strings.ToLower(next.Places[j].Name)
		if a != b {
			return a < b
		}
		return next.Places[i].ID < next.Places[j].ID
	})

	s.snap.Store(next)
	metrics.Items.WithLabelValues("tasks").Set(float64(len(next.Tasks)))
	metrics.Items.WithLabelValues("completed").Set(float64(len(next.Completed)))
	metrics.Items.WithLabelValues("events").Set(float64(len(next.Events)))
	metrics.Items.WithLabelValues("places").Set(float64(len(next.Places)))
	s.changed = true
	return nil
}

// current returns the loaded snapshot, loading it on first use. Callers hold mu.
func (s *Service) current(ctx context.Context) (*Snapshot, error) {
	if p := s.snap.Load(); p != nil {
		return p, nil
	}
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s.snap.Load(), nil
}

// commit runs stage against persistence, saves, and reloads. Any failure
// drops the staged changes; a failed save also resyncs from disk so the
// snapshot reflects only what was durably written.
func (s *Service) commit(ctx context.Context, op string, stage func(p store.Persistence) error) error {
	if err := stage(s.Persistence); err != nil {
		s.Persistence.Discard()
		metrics.Mutations.WithLabelValues(op, outcome(err)).Inc()
		return err
	}
	if err := s.Persistence.Save(); err != nil {
		s.Persistence.Discard()
		metrics.Mutations.WithLabelValues(op, "persistence").Inc()
		log.L().WithError(err).Errorw("save failed", "op", op)
		if rerr := s.reloadLocked(ctx); rerr != nil {
			log.L().WithError(rerr).Warnw("reload after failed save", "op", op)
		}
		return err
	}
	metrics.Mutations.WithLabelValues(op, "ok").Inc()
	log.L().Debugw("committed", "op", op)
	return s.reloadLocked(ctx)
}

// reject records a mutation refused before reaching persistence.
func reject(op string, err error) error {
	metrics.Mutations.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	var perr *store.PersistenceError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &perr):
		return "persistence"
	default:
		return "error"
	}
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Follow reloads whenever persistence reports a change made outside this
// Service. It blocks until ctx is done or the watch stream closes.
func (s *Service) Follow(ctx context.Context) error {
	events, err := s.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.L().Debugw("persistence changed", "type", ev.Type, "kind", ev.Kind)
			if err := s.Reload(ctx); err != nil {
				log.L().WithError(err).Warn("reload after change")
			}
		}
	}
}

func trim(vals ...*string) {
	for _, v := range vals {
		*v = strings.TrimSpace(*v)
	}
}
