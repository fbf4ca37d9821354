// Package ical converts events to and from iCalendar files.
package ical

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/timeutil"
)

const productID = "-//tableflip.dev//notiq//EN"

// MaxOccurrences caps how many instances one recurring event expands into.
const MaxOccurrences = 500

// maxScanned caps how many raw occurrences are walked while looking for ones
// inside the import window.
const maxScanned = 100000

// Export writes events as a VCALENDAR. Flagged events carry PRIORITY 1.
func Export(w io.Writer, events []*model.Event, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@notiq")
		ve.SetDtStampTime(now)
		if !e.Created.IsZero() {
			ve.SetCreatedTime(e.Created)
		}
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if loc := joinLocation(e.Location, e.Address); loc != "" {
			ve.SetLocation(loc)
		}
		if e.Flagged {
			ve.SetProperty(ics.ComponentPropertyPriority, "1")
		}

		switch {
		case e.AllDay || e.Start == nil:
			day := timeutil.StartOfDay(e.Date)
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		default:
			ve.SetStartAt(*e.Start)
			if e.End != nil {
				ve.SetEndAt(*e.End)
			}
		}
	}
	return cal.SerializeTo(w)
}

func joinLocation(location, address string) string {
	switch {
	case location == "":
		return address
	case address == "":
		return location
	default:
		return location + ", " + address
	}
}

// Import parses a VCALENDAR into event inputs in loc. Single events are
// returned whatever their date; recurring events are expanded into the
// instances starting inside [from, until].
func Import(r io.Reader, from, until time.Time, loc *time.Location) ([]app.EventInput, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ical: parse: %w", err)
	}

	out := make([]app.EventInput, 0)
	for _, ve := range cal.Events() {
		base, rule, exdates, err := parseEvent(ve, loc)
		if err != nil {
			log.L().WithError(err).Warnw("skipping calendar event", "uid", propValue(ve, ics.ComponentPropertyUniqueId))
			continue
		}
		if rule == "" {
			out = append(out, base)
			continue
		}
		instances, err := expand(base, rule, exdates, from, until)
		if err != nil {
			log.L().WithError(err).Warnw("skipping recurrence", "uid", propValue(ve, ics.ComponentPropertyUniqueId), "rrule", rule)
			out = append(out, base)
			continue
		}
		out = append(out, instances...)
	}
	return out, nil
}

func propValue(ve *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func parseEvent(ve *ics.VEvent, loc *time.Location) (app.EventInput, string, []time.Time, error) {
	var in app.EventInput
	dtstart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtstart == nil {
		return in, "", nil, errors.New("missing DTSTART")
	}

	in.Title = propValue(ve, ics.ComponentPropertySummary)
	in.Description = propValue(ve, ics.ComponentPropertyDescription)
	in.Location = propValue(ve, ics.ComponentPropertyLocation)
	in.Flagged = strings.TrimSpace(propValue(ve, ics.ComponentPropertyPriority)) == "1"

	if isDate(dtstart) {
		day, err := ve.GetAllDayStartAt()
		if err != nil {
			return in, "", nil, err
		}
		in.AllDay = true
		in.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return in, "", nil, err
		}
		start = start.In(loc)
		in.Start = &start
		in.Date = timeutil.StartOfDay(start)
		if end, err := ve.GetEndAt(); err == nil {
			end = end.In(loc)
			in.End = &end
		}
	}

	var exdates []time.Time
	for _, p := range ve.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), loc); err == nil {
				exdates = append(exdates, t)
			}
		}
	}
	return in, propValue(ve, ics.ComponentPropertyRrule), exdates, nil
}

func isDate(p *ics.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

func expand(base app.EventInput, raw string, exdates []time.Time, from, until time.Time) ([]app.EventInput, error) {
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	start := base.Date
	if base.Start != nil {
		start = *base.Start
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exdates {
		set.ExDate(ex.In(start.Location()))
	}

	var length time.Duration
	if base.Start != nil && base.End != nil {
		length = base.End.Sub(*base.Start)
	}

	from, until = from.In(start.Location()), until.In(start.Location())
	next := set.Iterator()
	out := make([]app.EventInput, 0)
	for scanned := 0; len(out) < MaxOccurrences && scanned < maxScanned; scanned++ {
		at, ok := next()
		if !ok || at.After(until) {
			break
		}
		if at.Before(from) {
			continue
		}
		in := base
		if base.AllDay || base.Start == nil {
			in.Date = timeutil.StartOfDay(at)
		} else {
			s := at
			in.Start = &s
			in.Date = timeutil.StartOfDay(at)
			if base.End != nil {
				e := at.Add(length)
				in.End = &e
			}
		}
		out = append(out, in)
	}
	return out, nil
}
