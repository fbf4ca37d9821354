package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/store"
)

var fixedNow = time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local)

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc, err := New(context.Background(), mem)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Clock = func() time.Time { return fixedNow }
	return svc, mem
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func ptr(t time.Time) *time.Time { return &t }

func mustAddTask(t *testing.T, svc *Service, in TaskInput) *model.Task {
	t.Helper()
	task, err := svc.AddTask(context.Background(), in)
	if err != nil {
		t.Fatalf("add task %q: %v", in.Title, err)
	}
	return task
}

func TestAddTaskKeepsActiveSorted(t *testing.T) {
	svc, _ := newService(t)
	mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG101", Due: at(2025, 5, 1, 9, 0)})
	mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH", Due: at(2025, 5, 1, 8, 0), Flagged: true})
	mustAddTask(t, svc, TaskInput{Title: "Reading", Course: "HIST", Due: at(2025, 4, 30, 8, 0)})
	mustAddTask(t, svc, TaskInput{Title: "Lab", Course: "BIO", Due: at(2025, 5, 3, 8, 0), Flagged: true})

	snap := svc.Snapshot()
	want := []string{"Quiz", "Lab", "Reading", "Essay"}
	if len(snap.Tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(snap.Tasks))
	}
	for i, title := range want {
		if snap.Tasks[i].Title != title {
			t.Fatalf("task %d = %q, want %q", i, snap.Tasks[i].Title, title)
		}
	}
	for _, task := range snap.Tasks {
		if task.Completed {
			t.Fatalf("new task %q should be active", task.Title)
		}
		if task.ID == "" {
			t.Fatalf("new task %q has no id", task.Title)
		}
		if !task.Created.Equal(fixedNow) {
			t.Fatalf("created = %v", task.Created)
		}
	}
}

func TestAddTaskValidation(t *testing.T) {
	svc, _ := newService(t)
	tests := []TaskInput{
		{Title: "  ", Course: "MATH"},
		{Title: "Quiz", Course: ""},
		{},
	}
	for _, in := range tests {
		_, err := svc.AddTask(context.Background(), in)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("AddTask(%+v) err = %v, want ErrValidation", in, err)
		}
	}
	if n := len(svc.Snapshot().Tasks); n != 0 {
		t.Fatalf("rejected tasks were stored: %d", n)
	}
}

func TestUpdateTask(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	orig := mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG101", Due: at(2025, 5, 1, 9, 0)})
	if _, err := svc.MarkTaskDone(ctx, orig.ID); err != nil {
		t.Fatalf("done: %v", err)
	}

	updated, err := svc.UpdateTask(ctx, orig.ID, TaskInput{Title: "Final essay", Course: "ENG101", Due: at(2025, 5, 2, 9, 0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != orig.ID || !updated.Completed || !updated.Created.Equal(orig.Created) {
		t.Fatalf("identity or completion changed: %+v", updated)
	}
	snap := svc.Snapshot()
	if len(snap.Completed) != 1 || snap.Completed[0].Title != "Final essay" {
		t.Fatalf("completed partition = %+v", snap.Completed)
	}

	if _, err := svc.UpdateTask(ctx, "missing", TaskInput{Title: "x", Course: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update unknown err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateTask(ctx, orig.ID, TaskInput{Title: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("update invalid err = %v, want ErrValidation", err)
	}
}

func TestDoneUndoneRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	task := mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH", Due: at(2025, 5, 1, 8, 0), Flagged: true})

	done, err := svc.MarkTaskDone(ctx, task.ID)
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !done.Completed || !done.CompletedAt.Equal(fixedNow) {
		t.Fatalf("done task = %+v", done)
	}
	snap := svc.Snapshot()
	if len(snap.Tasks) != 0 || len(snap.Completed) != 1 {
		t.Fatalf("partitions after done: %d active, %d completed", len(snap.Tasks), len(snap.Completed))
	}

	undone, err := svc.MarkTaskUndone(ctx, task.ID)
	if err != nil {
		t.Fatalf("undone: %v", err)
	}
	if undone.ID != task.ID || undone.Title != task.Title || undone.Course != task.Course ||
		!undone.Due.Equal(task.Due) || undone.Flagged != task.Flagged || !undone.Created.Equal(task.Created) {
		t.Fatalf("round trip changed task:\n got %+v\nwant %+v", undone, task)
	}
	if undone.Completed || !undone.CompletedAt.IsZero() {
		t.Fatalf("undone task still marked complete: %+v", undone)
	}
	snap = svc.Snapshot()
	if len(snap.Tasks) != 1 || len(snap.Completed) != 0 {
		t.Fatalf("partitions after undone: %d active, %d completed", len(snap.Tasks), len(snap.Completed))
	}
}

func TestMarkDoneOnCompletedIsNoop(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	task := mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})
	if _, err := svc.MarkTaskDone(ctx, task.ID); err != nil {
		t.Fatalf("done: %v", err)
	}
	before := svc.Snapshot()
	if _, err := svc.MarkTaskDone(ctx, task.ID); err != nil {
		t.Fatalf("second done: %v", err)
	}
	after := svc.Snapshot()
	if len(after.Completed) != 1 || len(after.Tasks) != 0 {
		t.Fatalf("partition membership changed")
	}
	if after.Completed[0] != before.Completed[0] {
		t.Fatalf("no-op should not swap the snapshot")
	}
	if _, err := svc.MarkTaskUndone(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("undone unknown err = %v, want ErrNotFound", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	task := mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})

	for _, del := range []func(context.Context, string) error{svc.DeleteTask, svc.DeleteEvent, svc.DeleteStudyPlace} {
		if err := del(ctx, "missing"); err != nil {
			t.Fatalf("delete unknown: %v", err)
		}
	}
	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if n := len(svc.Snapshot().Tasks); n != 0 {
		t.Fatalf("expected no tasks, got %d", n)
	}
}

func TestAllDayEventClearsWindow(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e, err := svc.AddEvent(ctx, EventInput{
		Title:  "Holiday",
		AllDay: true,
		Date:   at(2025, 6, 10, 0, 0),
		Start:  ptr(at(2025, 6, 10, 9, 0)),
		End:    ptr(at(2025, 6, 10, 10, 0)),
	})
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	if e.Start != nil || e.End != nil {
		t.Fatalf("all-day event kept its window: %v %v", e.Start, e.End)
	}

	updated, err := svc.UpdateEvent(ctx, e.ID, EventInput{
		Title: "Holiday",
		Date:  at(2025, 6, 10, 0, 0),
		Start: ptr(at(2025, 6, 10, 9, 0)),
		End:   ptr(at(2025, 6, 10, 10, 0)),
	})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if updated.Start == nil || updated.End == nil {
		t.Fatalf("timed update lost its window")
	}

	updated, err = svc.UpdateEvent(ctx, e.ID, EventInput{Title: "Holiday", AllDay: true, Date: at(2025, 6, 10, 0, 0), Start: ptr(at(2025, 6, 10, 9, 0))})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if updated.Start != nil || updated.End != nil {
		t.Fatalf("all-day update kept its window")
	}
}

func TestEventValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.AddEvent(ctx, EventInput{
		Title: "Backwards",
		Date:  at(2025, 6, 10, 0, 0),
		Start: ptr(at(2025, 6, 10, 10, 0)),
		End:   ptr(at(2025, 6, 10, 9, 0)),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("end before start err = %v, want ErrValidation", err)
	}
	if _, err := svc.AddEvent(ctx, EventInput{Date: at(2025, 6, 10, 0, 0)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty title err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateEvent(ctx, "missing", EventInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update unknown err = %v, want ErrNotFound", err)
	}
}

func TestEventsSorted(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, in := range []EventInput{
		{Title: "Late", Date: at(2025, 6, 10, 0, 0), Start: ptr(at(2025, 6, 10, 18, 0))},
		{Title: "Early", Date: at(2025, 6, 10, 0, 0), Start: ptr(at(2025, 6, 10, 8, 0))},
		{Title: "Flagged", Date: at(2025, 6, 12, 0, 0), Flagged: true, AllDay: true},
	} {
		if _, err := svc.AddEvent(ctx, in); err != nil {
			t.Fatalf("add %q: %v", in.Title, err)
		}
	}
	events := svc.Snapshot().Events
	for i, want := range []string{"Flagged", "Early", "Late"} {
		if events[i].Title != want {
			t.Fatalf("event %d = %q, want %q", i, events[i].Title, want)
		}
	}
}

func TestStudyPlaces(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.AddStudyPlace(ctx, PlaceInput{Name: "Rooftop", Type: "other", Custom: "terrace", Latitude: 40.7, Longitude: -74})
	if err != nil {
		t.Fatalf("add place: %v", err)
	}
	if p.Type != "terrace" {
		t.Fatalf("type = %q, want custom type", p.Type)
	}
	if _, err := svc.AddStudyPlace(ctx, PlaceInput{Name: "Nowhere", Type: "park", Latitude: 91}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad latitude err = %v, want ErrValidation", err)
	}
	if _, err := svc.AddStudyPlace(ctx, PlaceInput{Name: "Vague", Type: "Other", Custom: " "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("other without custom err = %v, want ErrValidation", err)
	}
	if _, err := svc.AddStudyPlace(ctx, PlaceInput{Name: "Nameless"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing type err = %v, want ErrValidation", err)
	}
	if err := svc.DeleteStudyPlace(ctx, p.ID); err != nil {
		t.Fatalf("delete place: %v", err)
	}
	if n := len(svc.Snapshot().Places); n != 0 {
		t.Fatalf("expected no places, got %d", n)
	}
}

func TestSetStudyPlacesDropsStale(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	mine, err := svc.AddStudyPlace(ctx, PlaceInput{Name: "Home desk", Type: "other", Custom: "desk", Latitude: 1, Longitude: 1})
	if err != nil {
		t.Fatalf("add place: %v", err)
	}

	older := svc.NextSequence()
	newer := svc.NextSequence()

	applied, err := svc.SetStudyPlaces(ctx, newer, []PlaceInput{
		{Name: "Central Library", Type: "library", Latitude: 40, Longitude: -73},
		{Name: "", Type: "cafe", Latitude: 40, Longitude: -73},
	})
	if err != nil || !applied {
		t.Fatalf("apply newer: applied=%v err=%v", applied, err)
	}
	applied, err = svc.SetStudyPlaces(ctx, older, []PlaceInput{{Name: "Old Cafe", Type: "cafe", Latitude: 1, Longitude: 2}})
	if err != nil || applied {
		t.Fatalf("apply older: applied=%v err=%v", applied, err)
	}

	snap := svc.Snapshot()
	if len(snap.Places) != 2 {
		t.Fatalf("expected user place plus one result, got %+v", snap.Places)
	}
	if _, ok := snap.Place(mine.ID); !ok {
		t.Fatalf("user place was replaced")
	}
	if snap.Places[0].Name != "Central Library" || snap.Places[0].Source != model.SourceRemote {
		t.Fatalf("unexpected remote place %+v", snap.Places[0])
	}

	applied, err = svc.SetStudyPlaces(ctx, svc.NextSequence(), nil)
	if err != nil || !applied {
		t.Fatalf("apply empty: applied=%v err=%v", applied, err)
	}
	if n := len(svc.Snapshot().Places); n != 1 {
		t.Fatalf("remote places not cleared, %d left", n)
	}
}

func TestPersistenceFailureLeavesSnapshot(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()
	task := mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})
	before := svc.Snapshot()

	mem.FailSaves(errors.New("disk full"))
	_, err := svc.AddTask(ctx, TaskInput{Title: "Essay", Course: "ENG"})
	var perr *store.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
	if _, err := svc.MarkTaskDone(ctx, task.ID); !errors.As(err, &perr) {
		t.Fatalf("done err = %v, want PersistenceError", err)
	}
	after := svc.Snapshot()
	if len(after.Tasks) != len(before.Tasks) || len(after.Completed) != 0 {
		t.Fatalf("snapshot changed after failed saves: %+v", after)
	}

	mem.FailSaves(nil)
	mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG"})
	if n := len(svc.Snapshot().Tasks); n != 2 {
		t.Fatalf("expected staged change discarded and new add stored, got %d tasks", n)
	}
}

func TestSnapshotIsStableAcrossMutations(t *testing.T) {
	svc, _ := newService(t)
	mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})
	held := svc.Snapshot()
	mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG"})
	if len(held.Tasks) != 1 {
		t.Fatalf("held snapshot observed a later mutation")
	}
}

func TestSubscribe(t *testing.T) {
	svc, _ := newService(t)
	var got []int
	cancel := svc.Subscribe(func(s Snapshot) { got = append(got, len(s.Tasks)) })
	mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})
	cancel()
	mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG"})
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("subscriber calls = %v", got)
	}
}

func TestSubscriberMayMutate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	svc.Subscribe(func(s Snapshot) {
		for _, task := range s.Tasks {
			if task.Title == "Quiz" {
				if _, err := svc.MarkTaskDone(ctx, task.ID); err != nil {
					t.Errorf("mark done from subscriber: %v", err)
				}
			}
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.AddTask(ctx, TaskInput{Title: "Quiz", Course: "MATH"}); err != nil {
			t.Errorf("add: %v", err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutation from a subscriber deadlocked")
	}

	snap := svc.Snapshot()
	if len(snap.Tasks) != 0 || len(snap.Completed) != 1 {
		t.Fatalf("tasks = %d, completed = %d; want 0 and 1", len(snap.Tasks), len(snap.Completed))
	}
}

func TestFollowReloadsExternalChanges(t *testing.T) {
	mem := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader, err := New(ctx, mem)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	writer, err := New(ctx, mem)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	reader.Subscribe(func(s Snapshot) {
		if len(s.Tasks) > 0 {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	})
	done := make(chan error, 1)
	go func() { done <- reader.Follow(ctx) }()

	// Follow subscribes asynchronously, so keep writing until it notices.
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-reloaded:
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) && err != nil {
				t.Fatalf("follow: %v", err)
			}
			return
		case <-tick.C:
			if _, err := writer.AddTask(ctx, TaskInput{Title: "Quiz", Course: "MATH"}); err != nil {
				t.Fatalf("add: %v", err)
			}
		case <-deadline:
			t.Fatal("reader never saw the external change")
		}
	}
}

func TestNoPersistence(t *testing.T) {
	svc := &Service{}
	if _, err := svc.AddTask(context.Background(), TaskInput{Title: "x", Course: "y"}); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.Reload(context.Background()); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("reload err = %v", err)
	}
	if snap := svc.Snapshot(); len(snap.Tasks) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestReport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := mustAddTask(t, svc, TaskInput{Title: "Quiz", Course: "MATH"})
	b := mustAddTask(t, svc, TaskInput{Title: "Essay", Course: "ENG"})
	mustAddTask(t, svc, TaskInput{Title: "Open", Course: "ENG"})
	for _, id := range []string{a.ID, b.ID} {
		if _, err := svc.MarkTaskDone(ctx, id); err != nil {
			t.Fatalf("done: %v", err)
		}
	}

	res := svc.Report(fixedNow.Add(time.Hour), fixedNow.Add(-time.Hour))
	if res.Total != 2 || len(res.Sections) != 2 {
		t.Fatalf("report = %+v", res)
	}
	if res.Sections[0].Course != "ENG" || res.Sections[1].Course != "MATH" {
		t.Fatalf("sections out of order: %+v", res.Sections)
	}
	if !res.Since.Before(res.Until) {
		t.Fatalf("bounds not normalized")
	}
	if empty := svc.Report(fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour)); empty.Total != 0 {
		t.Fatalf("expected empty report, got %d", empty.Total)
	}
}
