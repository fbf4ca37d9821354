package ical

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tableflip.dev/notiq/pkg/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 7, 1, 22, 0, 0, 0, loc)
	end := time.Date(2025, 7, 2, 2, 0, 0, 0, loc)
	events := []*model.Event{
		{ID: "a", Title: "Holiday", AllDay: true, Date: time.Date(2025, 6, 10, 0, 0, 0, 0, loc), Flagged: true},
		{ID: "b", Title: "Party", Description: "bring snacks", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, loc), Start: &start, End: &end, Location: "Dorm"},
	}

	var buf bytes.Buffer
	if err := Export(&buf, events, start); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("export missing calendar:\n%s", buf.String())
	}

	got, err := Import(&buf, start, start, loc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d events, want 2", len(got))
	}

	holiday, party := got[0], got[1]
	if holiday.Title != "Holiday" || !holiday.AllDay || !holiday.Flagged {
		t.Fatalf("holiday = %+v", holiday)
	}
	if !holiday.Date.Equal(events[0].Date) || holiday.Start != nil {
		t.Fatalf("holiday date = %v start = %v", holiday.Date, holiday.Start)
	}
	if party.Title != "Party" || party.AllDay || party.Flagged || party.Description != "bring snacks" || party.Location != "Dorm" {
		t.Fatalf("party = %+v", party)
	}
	if party.Start == nil || !party.Start.Equal(start) || party.End == nil || !party.End.Equal(end) {
		t.Fatalf("party window = %v - %v", party.Start, party.End)
	}
	if !party.Date.Equal(events[1].Date) {
		t.Fatalf("party date = %v", party.Date)
	}
}

func TestImportExpandsRecurrence(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:r1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250106T090000Z",
		"DTEND:20250106T100000Z",
		"RRULE:FREQ=WEEKLY;COUNT=10",
		"EXDATE:20250113T090000Z",
		"SUMMARY:Study group",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := Import(strings.NewReader(body), from, until, time.UTC)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	wantDays := []int{6, 20, 27}
	if len(got) != len(wantDays) {
		t.Fatalf("got %d instances, want %d", len(got), len(wantDays))
	}
	for i, day := range wantDays {
		in := got[i]
		if in.Start == nil || in.Start.Day() != day || in.Start.Hour() != 9 {
			t.Fatalf("instance %d start = %v", i, in.Start)
		}
		if in.End == nil || in.End.Sub(*in.Start) != time.Hour {
			t.Fatalf("instance %d lost its length", i)
		}
		if in.Date.Day() != day {
			t.Fatalf("instance %d date = %v", i, in.Date)
		}
	}
}

func TestImportCapsDenseRecurrence(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:dense",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250101T000000Z",
		"DTEND:20250101T000001Z",
		"RRULE:FREQ=SECONDLY",
		"SUMMARY:Ticker",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)
	done := make(chan []string, 1)
	go func() {
		got, err := Import(strings.NewReader(body), from, until, time.UTC)
		if err != nil {
			t.Errorf("import: %v", err)
		}
		titles := make([]string, 0, len(got))
		for _, in := range got {
			titles = append(titles, in.Title)
		}
		done <- titles
	}()

	select {
	case got := <-done:
		if len(got) != MaxOccurrences {
			t.Fatalf("got %d instances, want %d", len(got), MaxOccurrences)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expanding a secondly rule over a year did not stop at the cap")
	}
}

func TestImportSkipsEventsWithoutStart(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:x",
		"SUMMARY:No start",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	got, err := Import(strings.NewReader(body), time.Time{}, time.Time{}, time.UTC)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected event without DTSTART to be skipped, got %+v", got)
	}
}
