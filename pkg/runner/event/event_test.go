package event

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/store"
)

func init() {
	color.NoColor = true
}

var now = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func newEvent(t *testing.T) (*Event, *bytes.Buffer) {
	t.Helper()
	svc, err := app.New(context.Background(), store.NewMemory())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	buf := &bytes.Buffer{}
	return &Event{Service: svc, Now: now, Out: buf}, buf
}

func TestListOnDaySpansMidnight(t *testing.T) {
	e, buf := newEvent(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 3, 22, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	if err := e.Add(ctx, app.EventInput{Title: "Hackathon", Date: start, Start: &start, End: &end}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	buf.Reset()

	next := time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	if err := e.List(ctx, &next); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !strings.Contains(buf.String(), "Hackathon") {
		t.Errorf("event crossing midnight missing from next day:\n%s", buf.String())
	}
}

func TestExportImport(t *testing.T) {
	e, _ := newEvent(t)
	ctx := context.Background()
	if err := e.Add(ctx, app.EventInput{Title: "Finals week", AllDay: true, Date: now.AddDate(0, 0, 5)}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	var ics bytes.Buffer
	if err := e.Export(ctx, &ics); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(ics.String(), "SUMMARY:Finals week") {
		t.Fatalf("export missing summary:\n%s", ics.String())
	}

	other, _ := newEvent(t)
	if err := other.Import(ctx, &ics, 30*24*time.Hour); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got := other.Service.Snapshot().Events
	if len(got) != 1 || got[0].Title != "Finals week" || !got[0].AllDay {
		t.Fatalf("unexpected import %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	e, _ := newEvent(t)
	if err := e.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
