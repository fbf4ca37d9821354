package options

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/timeutil"
)

// TaskOptions holds the task field flags.
type TaskOptions struct {
	Title       string
	Course      string
	Description string
	Due         string
	Location    string
	Address     string
	Flagged     bool
}

func AddTaskArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().StringVar(&o.Title, "title", "", "Task title.")
	cmd.Flags().StringVarP(&o.Course, "course", "c", "", "Course the task belongs to.")
	cmd.Flags().StringVarP(&o.Description, "description", "d", "", "Longer description.")
	cmd.Flags().StringVar(&o.Due, "due", "", `Due date, example: --due="2025-05-01T09:00" or --due="5/1".`)
	cmd.Flags().StringVar(&o.Location, "location", "", "Where the task happens.")
	cmd.Flags().StringVar(&o.Address, "address", "", "Street address of the location.")
	cmd.Flags().BoolVarP(&o.Flagged, "flag", "f", false, "Flag the task as important.")
}

// Input builds a task input from base overlaid with the flags the user set.
// A nil base starts from an empty task due now.
func (o *TaskOptions) Input(cmd *cobra.Command, base *model.Task, now time.Time) (app.TaskInput, error) {
	in := app.TaskInput{Due: now}
	if base != nil {
		in = app.TaskInput{
			Title:       base.Title,
			Course:      base.Course,
			Description: base.Description,
			Due:         base.Due,
			Location:    base.Location,
			Address:     base.Address,
			Flagged:     base.Flagged,
		}
	}
	changed := cmd.Flags().Changed
	if changed("title") || base == nil {
		in.Title = o.Title
	}
	if changed("course") {
		in.Course = o.Course
	}
	if changed("description") {
		in.Description = o.Description
	}
	if changed("due") {
		due, err := timeutil.ParseWhen(o.Due, now)
		if err != nil {
			return in, err
		}
		in.Due = due
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
func (o *TaskOptions) TitleFromArgs(args []string) {
	if o.Title == "" {
		o.Title = strings.Join(args, " ")
	}
}
