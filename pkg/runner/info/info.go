package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/config"
)

// Info prints where notiq reads its settings and records from.
type Info struct {
	Config  *config.Config
	Service *app.Service
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("NOTIQ_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "NOTIQ_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "NOTIQ_CONFIG_PATH env var not set")
	}
	if file := config.ConfigFile(); file != "" {
		_, _ = fmt.Fprintln(out, "Config file:", file)
	} else {
		_, _ = fmt.Fprintln(out, "Config file: none, using defaults")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintln(out, "Config.path:", n.Config.BasePath())
	if n.Config.Places.FetchURL != "" {
		_, _ = fmt.Fprintln(out, "Study place directory:", n.Config.Places.FetchURL)
	}

	if n.Service == nil {
		return errors.New("failed to create persistence object")
	}

	snap := n.Service.Snapshot()
	_, _ = fmt.Fprintf(out, "Records:\n")
	_, _ = fmt.Fprintf(out, "  %-10s %d\n", "tasks", len(snap.Tasks))
	_, _ = fmt.Fprintf(out, "  %-10s %d\n", "completed", len(snap.Completed))
	_, _ = fmt.Fprintf(out, "  %-10s %d\n", "events", len(snap.Events))
	_, _ = fmt.Fprintf(out, "  %-10s %d\n", "places", len(snap.Places))
	return nil
}
