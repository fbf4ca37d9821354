package app

import (
	"errors"
	"fmt"

	"tableflip.dev/notiq/pkg/model"
)

var (
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrNoPersistence = errors.New("app: no persistence configured")
)

// Error wraps a sentinel kind with detail about the rejected operation.
// Match it with errors.Is against ErrValidation or ErrNotFound.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return "app: " + e.Kind.Error()
	}
	return fmt.Sprintf("app: %s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFound(kind model.Kind, id string) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %q", kind, id)}
}
