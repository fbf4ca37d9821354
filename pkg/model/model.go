// Package model defines the records notiq keeps: tasks, events and study places.
package model

import "fmt"

// Kind names a record collection.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
	KindPlace Kind = "place"
)

// Kinds lists every persisted kind in load order.
var Kinds = []Kind{KindTask, KindEvent, KindPlace}

func (k Kind) String() string {
	return string(k)
}

// Record is implemented by everything the persistence layer stores.
type Record interface {
	RecordKind() Kind
	RecordID() string
}

// NewRecord returns an empty record for kind, ready to be decoded into.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindTask:
		return &Task{}, nil
	case KindEvent:
		return &Event{}, nil
	case KindPlace:
		return &StudyPlace{}, nil
	default:
		return nil, fmt.Errorf("model: unknown kind %q", kind)
	}
}

// ParseKind converts a stored kind prefix back into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("model: unknown kind %q", s)
}
