package options

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/timeutil"
)

// EventOptions holds the event field flags.
type EventOptions struct {
	Title       string
	Description string
	Date        string
	Start       string
	End         string
	AllDay      bool
	Location    string
	Address     string
	Flagged     bool
}

func AddEventArgs(cmd *cobra.Command, o *EventOptions) {
	cmd.Flags().StringVar(&o.Title, "title", "", "Event title.")
	cmd.Flags().StringVarP(&o.Description, "description", "d", "", "Longer description.")
	cmd.Flags().StringVar(&o.Date, "on", "", `Event date, example: --on="2025-06-10" or --on="6/10". Defaults to the start day.`)
	cmd.Flags().StringVar(&o.Start, "start", "", `Start time, example: --start="2025-07-01T22:00".`)
	cmd.Flags().StringVar(&o.End, "end", "", `End time, example: --end="2025-07-02T02:00".`)
	cmd.Flags().BoolVar(&o.AllDay, "all-day", false, "The event lasts the whole day.")
	cmd.Flags().StringVar(&o.Location, "location", "", "Where the event happens.")
	cmd.Flags().StringVar(&o.Address, "address", "", "Street address of the location.")
	cmd.Flags().BoolVarP(&o.Flagged, "flag", "f", false, "Flag the event as important.")
}

// Input builds an event input from base overlaid with the flags the user set.
func (o *EventOptions) Input(cmd *cobra.Command, base *model.Event, now time.Time) (app.EventInput, error) {
	in := app.EventInput{Date: timeutil.StartOfDay(now)}
	if base != nil {
		in = app.EventInput{
			Title:       base.Title,
			Description: base.Description,
			Flagged:     base.Flagged,
			AllDay:      base.AllDay,
			Date:        base.Date,
			Start:       base.Start,
			End:         base.End,
			Location:    base.Location,
			Address:     base.Address,
		}
	}
	changed := cmd.Flags().Changed
	if changed("title") || base == nil {
		in.Title = o.Title
	}
	if changed("description") {
		in.Description = o.Description
	}
	if changed("all-day") {
		in.AllDay = o.AllDay
	}
	if changed("start") {
		t, err := timeutil.ParseWhen(o.Start, now)
		if err != nil {
			return in, err
		}
		in.Start = &t
		if !changed("on") {
			in.Date = timeutil.StartOfDay(t)
		}
	}
	if changed("end") {
		t, err := timeutil.ParseWhen(o.End, now)
		if err != nil {
			return in, err
		}
		in.End = &t
	}
	if changed("on") {
		t, err := timeutil.ParseWhen(o.Date, now)
		if err != nil {
			return in, err
		}
		in.Date = timeutil.StartOfDay(t)
	}
	if changed("location") {
		in.Location = o.Location
	}
	if changed("address") {
		in.Address = o.Address
	}
	if changed("flag") {
		in.Flagged = o.Flagged
	}
	return in, nil
}

// TitleFromArgs fills Title from positional args when --title is absent.
func (o *EventOptions) TitleFromArgs(args []string) {
	if o.Title == "" {
		o.Title = strings.Join(args, " ")
	}
}
