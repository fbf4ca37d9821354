package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/commands/options"
	"tableflip.dev/notiq/pkg/runner/agenda"
	"tableflip.dev/notiq/pkg/timeutil"
)

func newAgendaRunner(cmd *cobra.Command, io *options.IDOptions) (*agenda.Agenda, error) {
	svc, err := openService(cmd.Context())
	if err != nil {
		return nil, err
	}
	a := &agenda.Agenda{
		Service: svc,
		Output:  oo.Structured(),
		Now:     time.Now(),
	}
	if io != nil {
		a.ShowID = io.ShowID
	}
	return a, nil
}

func addToday(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Overdue tasks, then everything due or happening today.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			a, err := newAgendaRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(a.Today(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addUpcoming(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Tasks and events coming up in the next few days.",
		Example: `
notiq upcoming
notiq upcoming --days 7
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			a, err := newAgendaRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			if !cmd.Flags().Changed("days") {
				days = loadedConfig().Upcoming.Days
			}
			return oo.HandleError(a.Upcoming(cmd.Context(), days))
		},
	}

	cmd.Flags().IntVar(&days, "days", 3, "Days after today to include. Defaults to upcoming.days from the config.")
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addCalendar(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	on := &options.OnOptions{}
	var month string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Month grid marking days with tasks and events.",
		Example: `
notiq calendar
notiq calendar --month 2025-06 --on 2025-06-10
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			a, err := newAgendaRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			day, err := on.GetOn(a.Now)
			if err != nil {
				return oo.HandleError(err)
			}
			m := a.Now
			switch {
			case month != "":
				if m, err = timeutil.ParseMonth(month, a.Now.Location()); err != nil {
					return oo.HandleError(err)
				}
			case day != nil:
				m = *day
			}
			return oo.HandleError(a.Calendar(cmd.Context(), m, day))
		},
	}

	cmd.Flags().StringVar(&month, "month", "", `Month to show, example: --month="2025-06". Defaults to the --on month or this month.`)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addReport(topLevel *cobra.Command) {
	var last string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Display recently completed tasks grouped by course",
		Long: `Report lists completed tasks grouped by course within the specified time window.

Examples:
  notiq report
  notiq report --last 3d
  notiq report --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			a, err := newAgendaRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(a.Report(cmd.Context(), last))
		},
	}

	cmd.Flags().StringVar(&last, "last", timeutil.DefaultWindow, "time window to include (for example 3d, 1w)")
	topLevel.AddCommand(cmd)
}
