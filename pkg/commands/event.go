package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/commands/options"
	"tableflip.dev/notiq/pkg/runner/event"
	"tableflip.dev/notiq/pkg/timeutil"
)

func addEvent(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events"},
		Short:   "Add, change, list and exchange calendar events.",
		Example: `
notiq event add "Midterm" --on 2025-06-10 --all-day
notiq event add "Hackathon" --start 2025-07-01T22:00 --end 2025-07-02T02:00
notiq event export --file notiq.ics
`,
	}

	addEventAdd(cmd)
	addEventUpdate(cmd)
	addEventDelete(cmd)
	addEventList(cmd)
	addEventExport(cmd)
	addEventImport(cmd)

	topLevel.AddCommand(cmd)
}

func newEventRunner(cmd *cobra.Command, io *options.IDOptions) (*event.Event, error) {
	svc, err := openService(cmd.Context())
	if err != nil {
		return nil, err
	}
	e := &event.Event{
		Service: svc,
		Output:  oo.Structured(),
		Now:     time.Now(),
	}
	if io != nil {
		e.ShowID = io.ShowID
	}
	return e, nil
}

func addEventAdd(parent *cobra.Command) {
	eo := &options.EventOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add an event.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			eo.TitleFromArgs(args)
			e, err := newEventRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			in, err := eo.Input(cmd, nil, e.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(e.Add(cmd.Context(), in))
		},
	}

	options.AddEventArgs(cmd, eo)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addEventUpdate(parent *cobra.Command) {
	eo := &options.EventOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an event. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := newEventRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			snap := e.Service.Snapshot()
			id, err := resolveID(eventIDs(snap), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			base, ok := snap.Event(id)
			if !ok {
				return oo.HandleError(&app.Error{Kind: app.ErrNotFound, Msg: "event " + id})
			}
			in, err := eo.Input(cmd, base, e.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(e.Update(cmd.Context(), id, in))
		},
	}

	options.AddEventArgs(cmd, eo)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addEventDelete(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete events.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := newEventRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			for _, arg := range args {
				id, err := resolveID(eventIDs(e.Service.Snapshot()), arg)
				if err != nil {
					return oo.HandleError(err)
				}
				if err := e.Delete(cmd.Context(), id); err != nil {
					return oo.HandleError(err)
				}
			}
			return nil
		},
	}

	parent.AddCommand(cmd)
}

func addEventList(parent *cobra.Command) {
	io := &options.IDOptions{}
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List events, flagged first then by time.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := newEventRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			day, err := on.GetOn(e.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(e.List(cmd.Context(), day))
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addEventExport(parent *cobra.Command) {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every event as an iCalendar file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := newEventRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			if file == "" || file == "-" {
				return oo.HandleError(e.Export(cmd.Context(), cmd.OutOrStdout()))
			}
			f, err := os.Create(file)
			if err != nil {
				return oo.HandleError(err)
			}
			if err := e.Export(cmd.Context(), f); err != nil {
				_ = f.Close()
				return oo.HandleError(err)
			}
			return oo.HandleError(f.Close())
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Output file. Defaults to stdout.")
	parent.AddCommand(cmd)
}

func addEventImport(parent *cobra.Command) {
	var (
		file   string
		window string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add the events from an iCalendar file.",
		Long: `Import adds every event in an iCalendar file. Recurring events are expanded
into single events for the window starting today.`,
		Example: `
notiq event import --file semester.ics --window 16w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			d, _, err := timeutil.ParseWindow(window)
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := newEventRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return oo.HandleError(err)
				}
				defer f.Close()
				in = f
			}
			return oo.HandleError(e.Import(cmd.Context(), in, d))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Input file. Defaults to stdin.")
	cmd.Flags().StringVar(&window, "window", timeutil.DefaultWindow, "How far ahead to expand recurring events (for example 30d, 16w).")
	parent.AddCommand(cmd)
}
