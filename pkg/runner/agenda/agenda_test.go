package agenda

import (
	"bytes"
	"context"
	"encoding/json"
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

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)

func newAgenda(t *testing.T) *Agenda {
	t.Helper()
	svc, err := app.New(context.Background(), store.NewMemory())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	svc.Clock = func() time.Time { return now }
	ctx := context.Background()
	for _, in := range []app.TaskInput{
		{Title: "Lab report", Course: "CHEM", Due: now.AddDate(0, 0, -2)},
		{Title: "Quiz", Course: "MATH", Due: now.Add(3 * time.Hour)},
		{Title: "Essay", Course: "ENG", Due: now.AddDate(0, 0, 2)},
	} {
		if _, err := svc.AddTask(ctx, in); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}
	if _, err := svc.AddEvent(ctx, app.EventInput{Title: "Club fair", AllDay: true, Date: now}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	return &Agenda{Service: svc, Now: now, Out: &bytes.Buffer{}}
}

func TestTodayListsOverdueSeparately(t *testing.T) {
	a := newAgenda(t)
	buf := &bytes.Buffer{}
	a.Out = buf
	a.Output = "json"

	if err := a.Today(context.Background()); err != nil {
		t.Fatalf("Today: %v", err)
	}
	var view DayView
	if err := json.Unmarshal(buf.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Overdue) != 1 || view.Overdue[0].Title != "Lab report" {
		t.Errorf("unexpected overdue %+v", view.Overdue)
	}
	if len(view.Items) != 2 {
		t.Fatalf("want 2 items today, got %d", len(view.Items))
	}
}

func TestUpcomingPretty(t *testing.T) {
	a := newAgenda(t)
	buf := &bytes.Buffer{}
	a.Out = buf

	if err := a.Upcoming(context.Background(), 0); err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Essay") {
		t.Errorf("upcoming missing Essay:\n%s", out)
	}
	if strings.Contains(out, "Quiz") {
		t.Errorf("upcoming should not list today's Quiz:\n%s", out)
	}
}

func TestCalendarWithDay(t *testing.T) {
	a := newAgenda(t)
	buf := &bytes.Buffer{}
	a.Out = buf
	a.Output = "json"
	on := now

	if err := a.Calendar(context.Background(), now, &on); err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	var view MonthView
	if err := json.Unmarshal(buf.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Days) != 30 {
		t.Errorf("want 30 days in June, got %d", len(view.Days))
	}
	if !view.Days[9].HasTasks || !view.Days[9].HasEvents {
		t.Errorf("June 10 should have tasks and events: %+v", view.Days[9])
	}
	if len(view.Tasks) != 1 || len(view.Events) != 1 {
		t.Errorf("want 1 task and 1 event on the day, got %d and %d", len(view.Tasks), len(view.Events))
	}
}

func TestReportWindow(t *testing.T) {
	a := newAgenda(t)
	buf := &bytes.Buffer{}
	a.Out = buf
	ctx := context.Background()
	quiz := a.Service.Snapshot().Tasks[1]
	if _, err := a.Service.MarkTaskDone(ctx, quiz.ID); err != nil {
		t.Fatalf("MarkTaskDone: %v", err)
	}
	a.Now = now.Add(time.Hour)

	if err := a.Report(ctx, "1d"); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(buf.String(), "MATH") || !strings.Contains(buf.String(), quiz.Title) {
		t.Errorf("report missing completed task:\n%s", buf.String())
	}

	if err := a.Report(ctx, "nonsense"); err == nil {
		t.Error("want error for bad window")
	}
}
