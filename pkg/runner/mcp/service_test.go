package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/places"
	"tableflip.dev/notiq/pkg/store"
)

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	a, err := app.New(context.Background(), store.NewMemory())
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	a.Clock = func() time.Time { return now }
	svc := NewService(a)
	svc.Clock = a.Clock
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestServiceAddTaskDefaultsDueToNow(t *testing.T) {
	svc := newService(t)

	dto, err := svc.AddTask(context.Background(), TaskArgs{
		Title:  ptr("Problem set"),
		Course: ptr("MATH 54"),
	})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
	if dto.Due != now.Format(time.RFC3339) {
		t.Fatalf("expected due %s, got %s", now.Format(time.RFC3339), dto.Due)
	}
	if dto.DueText != "Today at 9:00 AM" {
		t.Fatalf("unexpected due text %q", dto.DueText)
	}
}

func TestServiceAddTaskRejectsMissingCourse(t *testing.T) {
	svc := newService(t)

	_, err := svc.AddTask(context.Background(), TaskArgs{Title: ptr("Orphan")})
	if !errors.Is(err, app.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateTaskKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dto, err := svc.AddTask(ctx, TaskArgs{
		Title:    ptr("Essay"),
		Course:   ptr("ENG 1A"),
		Due:      ptr("2025-06-12T17:00"),
		Location: ptr("Doe Library"),
	})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	updated, err := svc.UpdateTask(ctx, dto.ID, TaskArgs{Flagged: ptr(true)})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if !updated.Flagged {
		t.Fatalf("expected flagged")
	}
	if updated.Location != "Doe Library" || updated.Due != dto.Due {
		t.Fatalf("unset fields changed: %+v", updated)
	}

	if _, err := svc.UpdateTask(ctx, "missing", TaskArgs{}); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCompleteAndReopen(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dto, err := svc.AddTask(ctx, TaskArgs{Title: ptr("Lab"), Course: ptr("CHEM"), Due: ptr("2025-06-09")})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if !dto.Overdue {
		t.Fatalf("expected task due yesterday to be overdue")
	}

	done, err := svc.SetTaskCompleted(ctx, dto.ID, true)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !done.Completed || done.CompletedAt == "" || done.Overdue {
		t.Fatalf("unexpected completed task %+v", done)
	}

	completed, err := svc.ListTasks(ctx, true, nil)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed task, got %d", len(completed))
	}

	reopened, err := svc.SetTaskCompleted(ctx, dto.ID, false)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != "" {
		t.Fatalf("expected active task, got %+v", reopened)
	}
}

func TestServiceEventStartSetsDate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dto, err := svc.AddEvent(ctx, EventArgs{
		Title: ptr("Study group"),
		Start: ptr("2025-06-11T22:00:00Z"),
		End:   ptr("2025-06-12T01:00:00Z"),
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if dto.Date != "2025-06-11" {
		t.Fatalf("expected date from start, got %s", dto.Date)
	}

	day, err := svc.Day(ctx, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if len(day.Events) != 1 {
		t.Fatalf("expected event crossing midnight on the next day, got %d", len(day.Events))
	}

	_, err = svc.AddEvent(ctx, EventArgs{
		Title: ptr("Backwards"),
		Start: ptr("2025-06-11T22:00:00Z"),
		End:   ptr("2025-06-11T21:00:00Z"),
	})
	if !errors.Is(err, app.ErrValidation) {
		t.Fatalf("expected validation error for end before start, got %v", err)
	}
}

type searchFunc func(ctx context.Context, query string) ([]places.Candidate, error)

func (f searchFunc) Search(ctx context.Context, query string) ([]places.Candidate, error) {
	return f(ctx, query)
}

func TestServiceAddStudyPlaceFromQuery(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.Searcher = searchFunc(func(context.Context, string) ([]places.Candidate, error) {
		return []places.Candidate{
			{Name: "", Latitude: 1, Longitude: 1},
			{Name: "Blue Bottle", State: "California", Country: "United States", Latitude: 37.87, Longitude: -122.27},
		}, nil
	})

	dto, err := svc.AddStudyPlace(ctx, app.PlaceInput{Type: "cafe"}, "blue bottle berkeley")
	if err != nil {
		t.Fatalf("AddStudyPlace failed: %v", err)
	}
	if dto.Name != "Blue Bottle" || dto.Type != "cafe" || dto.Latitude != 37.87 {
		t.Fatalf("unexpected place %+v", dto)
	}

	list, err := svc.ListStudyPlaces(ctx)
	if err != nil {
		t.Fatalf("ListStudyPlaces failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 place, got %d", len(list))
	}
}

func TestServiceSearchWithoutSearcher(t *testing.T) {
	svc := newService(t)
	if _, err := svc.SearchPlaces(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error without a searcher")
	}
}

func TestServiceUpcoming(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	for _, due := range []string{"2025-06-10T12:00", "2025-06-12T12:00", "2025-06-20T12:00"} {
		if _, err := svc.AddTask(ctx, TaskArgs{Title: ptr("Task " + due), Course: ptr("X"), Due: ptr(due)}); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}

	items, err := svc.Upcoming(ctx, 0)
	if err != nil {
		t.Fatalf("Upcoming failed: %v", err)
	}
	if len(items) != 1 || items[0].Kind != "task" {
		t.Fatalf("expected only the task two days out, got %+v", items)
	}

	today, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if len(today) != 1 {
		t.Fatalf("expected 1 item today, got %d", len(today))
	}
}
