package task

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/printers"
	"tableflip.dev/notiq/pkg/schedule"
)

// Task runs the task subcommands.
type Task struct {
	Service *app.Service
	Output  string
	ShowID  bool
	Wrap    int
	Now     time.Time
	Out     io.Writer
}

func (t *Task) out() io.Writer {
	if t.Out != nil {
		return t.Out
	}
	return color.Output
}

func (t *Task) pp() *printers.PrettyPrint {
	return &printers.PrettyPrint{ShowID: t.ShowID, Now: t.Now, Wrap: t.Wrap, Out: t.out()}
}

func (t *Task) check() error {
	if t.Service == nil {
		return errors.New("task: no service configured")
	}
	return nil
}

func (t *Task) show(title string, task *model.Task) error {
	return printers.Emit(t.out(), t.Output, task, func() {
		pp := t.pp()
		pp.Title(title)
		pp.Tasks(task)
	})
}

// Add creates a task and prints it.
func (t *Task) Add(ctx context.Context, in app.TaskInput) error {
	if err := t.check(); err != nil {
		return err
	}
	task, err := t.Service.AddTask(ctx, in)
	if err != nil {
		return err
	}
	return t.show("Added", task)
}

// Update edits a task and prints it.
func (t *Task) Update(ctx context.Context, id string, in app.TaskInput) error {
	if err := t.check(); err != nil {
		return err
	}
	task, err := t.Service.UpdateTask(ctx, id, in)
	if err != nil {
		return err
	}
	return t.show("Updated", task)
}

// Done marks a task completed, or active again when undo is set.
func (t *Task) Done(ctx context.Context, id string, undo bool) error {
	if err := t.check(); err != nil {
		return err
	}
	var (
		task *model.Task
		err  error
	)
	if undo {
		task, err = t.Service.MarkTaskUndone(ctx, id)
	} else {
		task, err = t.Service.MarkTaskDone(ctx, id)
	}
	if err != nil {
		return err
	}
	title := "Completed"
	if undo {
		title = "Reopened"
	}
	return t.show(title, task)
}

// Delete removes a task.
func (t *Task) Delete(ctx context.Context, id string) error {
	if err := t.check(); err != nil {
		return err
	}
	return t.Service.DeleteTask(ctx, id)
}

// List prints active tasks, or completed ones, optionally limited to a day.
func (t *Task) List(ctx context.Context, completed bool, on *time.Time) error {
	if err := t.check(); err != nil {
		return err
	}
	snap := t.Service.Snapshot()
	title := "Tasks"
	tasks := snap.Tasks
	if completed {
		title = "Completed"
		tasks = snap.Completed
	}
	if on != nil {
		if completed {
			tasks = schedule.TasksForDate(nil, snap.Completed, *on)
		} else {
			tasks = schedule.TasksForDate(snap.Tasks, nil, *on)
		}
		title += " · " + printers.Day(*on, t.now())
	}
	return printers.Emit(t.out(), t.Output, tasks, func() {
		pp := t.pp()
		pp.TitleWithCount(title, len(tasks), "task")
		pp.Tasks(tasks...)
	})
}

func (t *Task) now() time.Time {
	if t.Now.IsZero() {
		return time.Now()
	}
	return t.Now
}
