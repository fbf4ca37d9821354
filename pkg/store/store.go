// Package store persists notiq records. Mutations are staged with Insert,
// Update and DeleteWhere and only become durable on Save.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tableflip.dev/notiq/pkg/model"
)

// Config is the part of the application configuration the disk store needs.
type Config interface {
	BasePath() string
}

// Persistence defines the durable keyed store the app service syncs with.
//
// Reads only ever observe saved state. Staged changes are dropped by Discard
// and by a failed Save.
type Persistence interface {
	FetchAll(ctx context.Context, kind model.Kind) ([]model.Record, error)
	Insert(r model.Record) error
	Update(r model.Record) error
	DeleteWhere(kind model.Kind, match func(model.Record) bool) (int, error)
	Save() error
	Discard()
	Watch(ctx context.Context) (<-chan Event, error)
}

// ErrExists is returned by Insert when the record id is already taken.
var ErrExists = errors.New("store: record already exists")

// PersistenceError reports a failed durable write.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FetchAll loads every record of T's kind and keeps those pred accepts. A nil
// pred keeps everything.
func FetchAll[T model.Record](ctx context.Context, p Persistence, pred func(T) bool) ([]T, error) {
	var zero T
	records, err := p.FetchAll(ctx, zero.RecordKind())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, ok := r.(T)
		if !ok {
			continue
		}
		if pred == nil || pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func encode(r model.Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("store: nil record")
	}
	if r.RecordID() == "" {
		return nil, errors.New("store: record id required")
	}
	return json.Marshal(r)
}

func decode(kind model.Kind, data []byte) (model.Record, error) {
	r, err := model.NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

type opKind int

const (
	opWrite opKind = iota
	opErase
)

type op struct {
	kind opKind
	key  string
	data []byte
}
