package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/commands/options"
	"tableflip.dev/notiq/pkg/runner/task"
)

func addTask(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "reminder"},
		Short:   "Add, change and list tasks.",
		Example: `
notiq task add "Problem set 4" --course "MATH 110" --due 2025-05-01T09:00
notiq task list
notiq task done 3f2a
`,
	}

	addTaskAdd(cmd)
	addTaskUpdate(cmd)
	addTaskDone(cmd, "done", false)
	addTaskDone(cmd, "undone", true)
	addTaskDelete(cmd)
	addTaskList(cmd)

	topLevel.AddCommand(cmd)
}

func newTaskRunner(cmd *cobra.Command, io *options.IDOptions) (*task.Task, error) {
	svc, err := openService(cmd.Context())
	if err != nil {
		return nil, err
	}
	t := &task.Task{
		Service: svc,
		Output:  oo.Structured(),
		Now:     time.Now(),
	}
	if io != nil {
		t.ShowID = io.ShowID
	}
	return t, nil
}

func addTaskAdd(parent *cobra.Command) {
	to := &options.TaskOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task.",
		Example: `
notiq task add "Lab report" -c CHEM1A --due 5/2 --flag
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			to.TitleFromArgs(args)
			t, err := newTaskRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			in, err := to.Input(cmd, nil, t.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(t.Add(cmd.Context(), in))
		},
	}

	options.AddTaskArgs(cmd, to)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addTaskUpdate(parent *cobra.Command) {
	to := &options.TaskOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t, err := newTaskRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			snap := t.Service.Snapshot()
			id, err := resolveID(taskIDs(snap), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			base, ok := snap.Task(id)
			if !ok {
				return oo.HandleError(&app.Error{Kind: app.ErrNotFound, Msg: "task " + id})
			}
			in, err := to.Input(cmd, base, t.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(t.Update(cmd.Context(), id, in))
		},
	}

	options.AddTaskArgs(cmd, to)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addTaskDone(parent *cobra.Command, use string, undo bool) {
	short := "Mark tasks completed."
	if undo {
		short = "Move completed tasks back to the active list."
	}

	cmd := &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t, err := newTaskRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			for _, arg := range args {
				id, err := resolveID(taskIDs(t.Service.Snapshot()), arg)
				if err != nil {
					return oo.HandleError(err)
				}
				if err := t.Done(cmd.Context(), id, undo); err != nil {
					return oo.HandleError(err)
				}
			}
			return nil
		},
	}

	parent.AddCommand(cmd)
}

func addTaskDelete(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete tasks, active or completed.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t, err := newTaskRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			for _, arg := range args {
				id, err := resolveID(taskIDs(t.Service.Snapshot()), arg)
				if err != nil {
					return oo.HandleError(err)
				}
				if err := t.Delete(cmd.Context(), id); err != nil {
					return oo.HandleError(err)
				}
			}
			return nil
		},
	}

	parent.AddCommand(cmd)
}

func addTaskList(parent *cobra.Command) {
	io := &options.IDOptions{}
	on := &options.OnOptions{}
	var completed bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, flagged first then by due time.",
		Example: `
notiq task list
notiq task list --completed
notiq task list --on 5/1 -k
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			t, err := newTaskRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			day, err := on.GetOn(t.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(t.List(cmd.Context(), completed, day))
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "List completed tasks.")
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}
