package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tableflip.dev/notiq/pkg/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(eventWindow, model.Event{})
	return v
}

func eventWindow(sl validator.StructLevel) {
	e := sl.Current().Interface().(model.Event)
	if e.Start != nil && e.End != nil && e.End.Before(*e.Start) {
		sl.ReportError(e.End, "end", "End", "afterstart", "")
	}
}

// check validates a record and folds every field failure into one
// ErrValidation.
func check(r model.Record) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return invalidf("%v", err)
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, describe(fe))
	}
	return invalidf("%s %s", r.RecordKind(), strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "latitude":
		return "latitude must be between -90 and 90"
	case "longitude":
		return "longitude must be between -180 and 180"
	case "afterstart":
		return "end must not be before start"
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
