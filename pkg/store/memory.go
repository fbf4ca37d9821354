package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tableflip.dev/notiq/pkg/model"
)

// Memory is an in-process Persistence. It keeps encoded copies so callers can
// never alias stored records.
type Memory struct {
	mu      sync.Mutex
	data    map[model.Kind]map[string][]byte
	pending []memOp
	saveErr error
	subs    []chan Event
}

type memOp struct {
	op
	rkind model.Kind
	id    string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[model.Kind]map[string][]byte)}
}

// FailSaves makes every following Save fail with err until called with nil.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func (m *Memory) FetchAll(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data[kind]))
	for id := range m.data[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		r, err := decode(kind, m.data[kind][id])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) Insert(r model.Record) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kind, id := r.RecordKind(), r.RecordID()
	if _, ok := m.data[kind][id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, toKey(kind, id))
	}
	for _, o := range m.pending {
		if o.rkind == kind && o.id == id && o.kind == opWrite {
			return fmt.Errorf("%w: %s", ErrExists, toKey(kind, id))
		}
	}
	m.pending = append(m.pending, memOp{op: op{kind: opWrite, data: data}, rkind: kind, id: id})
	return nil
}

func (m *Memory) Update(r model.Record) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, memOp{op: op{kind: opWrite, data: data}, rkind: r.RecordKind(), id: r.RecordID()})
	return nil
}

func (m *Memory) DeleteWhere(kind model.Kind, match func(model.Record) bool) (int, error) {
	records, err := m.FetchAll(context.Background(), kind)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range records {
		if match != nil && !match(r) {
			continue
		}
		m.pending = append(m.pending, memOp{op: op{kind: opErase}, rkind: kind, id: r.RecordID()})
		n++
	}
	return n, nil
}

func (m *Memory) Save() error {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	if m.saveErr != nil {
		err := m.saveErr
		m.mu.Unlock()
		return &PersistenceError{Op: "save", Err: err}
	}
	changed := make(map[model.Kind]struct{})
	for _, o := range pending {
		if m.data[o.rkind] == nil {
			m.data[o.rkind] = make(map[string][]byte)
		}
		switch o.kind {
		case opWrite:
			m.data[o.rkind][o.id] = o.data
		case opErase:
			delete(m.data[o.rkind], o.id)
		}
		changed[o.rkind] = struct{}{}
	}
	// Sends never block, so they happen under the lock the closer also takes.
	for kind := range changed {
		for _, ch := range m.subs {
			select {
			case ch <- Event{Type: EventKindChanged, Kind: kind}:
			default:
			}
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Discard() {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}

// Watch emits an event per kind touched by each successful Save.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 64)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs {
			if sub == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
