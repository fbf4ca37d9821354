package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/ical"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/printers"
	"tableflip.dev/notiq/pkg/schedule"
)

// Event runs the event subcommands.
type Event struct {
	Service *app.Service
	Output  string
	ShowID  bool
	Wrap    int
	Now     time.Time
	Out     io.Writer
}

func (e *Event) out() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return color.Output
}

func (e *Event) now() time.Time {
	if e.Now.IsZero() {
		return time.Now()
	}
	return e.Now
}

func (e *Event) pp() *printers.PrettyPrint {
	return &printers.PrettyPrint{ShowID: e.ShowID, Now: e.now(), Wrap: e.Wrap, Out: e.out()}
}

func (e *Event) check() error {
	if e.Service == nil {
		return errors.New("event: no service configured")
	}
	return nil
}

func (e *Event) show(title string, ev *model.Event) error {
	return printers.Emit(e.out(), e.Output, ev, func() {
		pp := e.pp()
		pp.Title(title)
		pp.Events(ev)
	})
}

// Add creates an event and prints it.
func (e *Event) Add(ctx context.Context, in app.EventInput) error {
	if err := e.check(); err != nil {
		return err
	}
	ev, err := e.Service.AddEvent(ctx, in)
	if err != nil {
		return err
	}
	return e.show("Added", ev)
}

// Update edits an event and prints it.
func (e *Event) Update(ctx context.Context, id string, in app.EventInput) error {
	if err := e.check(); err != nil {
		return err
	}
	ev, err := e.Service.UpdateEvent(ctx, id, in)
	if err != nil {
		return err
	}
	return e.show("Updated", ev)
}

// Delete removes an event.
func (e *Event) Delete(ctx context.Context, id string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.Service.DeleteEvent(ctx, id)
}

// List prints every event, or those on one day.
func (e *Event) List(ctx context.Context, on *time.Time) error {
	if err := e.check(); err != nil {
		return err
	}
	events := e.Service.Snapshot().Events
	title := "Events"
	if on != nil {
		events = schedule.EventsForDate(events, *on)
		title += " · " + printers.Day(*on, e.now())
	}
	return printers.Emit(e.out(), e.Output, events, func() {
		pp := e.pp()
		pp.TitleWithCount(title, len(events), "event")
		pp.Events(events...)
	})
}

// Export writes every event to w as iCalendar.
func (e *Event) Export(ctx context.Context, w io.Writer) error {
	if err := e.check(); err != nil {
		return err
	}
	return ical.Export(w, e.Service.Snapshot().Events, e.now())
}

// Import adds the events in r. Recurring events are expanded across the
// window starting today.
func (e *Event) Import(ctx context.Context, r io.Reader, window time.Duration) error {
	if err := e.check(); err != nil {
		return err
	}
	now := e.now()
	inputs, err := ical.Import(r, now, now.Add(window), now.Location())
	if err != nil {
		return err
	}
	added := make([]*model.Event, 0, len(inputs))
	for _, in := range inputs {
		ev, err := e.Service.AddEvent(ctx, in)
		if err != nil {
			return fmt.Errorf("importing %q: %w", in.Title, err)
		}
		added = append(added, ev)
	}
	return printers.Emit(e.out(), e.Output, added, func() {
		pp := e.pp()
		pp.TitleWithCount("Imported", len(added), "event")
		pp.Events(added...)
	})
}
