package commands

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/commands/options"
	"tableflip.dev/notiq/pkg/config"
	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/places"
	"tableflip.dev/notiq/pkg/store"
)

var (
	oo  = &options.OutputOptions{}
	so  = &options.StoreOptions{}
	cfg *config.Config
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "notiq",
		Short: base.Wrap80("Tasks, calendar events and study places for students, on the command line."),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddStoreArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addTask(topLevel)
	addEvent(topLevel)
	addPlace(topLevel)
	addToday(topLevel)
	addUpcoming(topLevel)
	addCalendar(topLevel)
	addReport(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// setup loads the configuration and installs the logger.
func setup() error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	l, err := log.New(log.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: c.Log.Output,
	})
	if err != nil {
		return err
	}
	log.SetDefault(l)

	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		color.NoColor = true
	}
	cfg = c
	return nil
}

func loadedConfig() *config.Config {
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg
}

// openService builds the app service over the configured store.
func openService(ctx context.Context) (*app.Service, error) {
	var p store.Persistence
	if so.Ephemeral {
		p = store.NewMemory()
	} else {
		var err error
		if p, err = store.Load(loadedConfig()); err != nil {
			return nil, err
		}
	}
	return app.New(ctx, p)
}

func placeOptions() places.Options {
	c := loadedConfig().Places
	return places.Options{
		UserAgent: c.UserAgent,
		Rate:      c.Rate,
		Timeout:   c.Timeout,
	}
}

func searcher() places.Searcher {
	opts := placeOptions()
	opts.URL = loadedConfig().Places.SearchURL
	return places.NewNominatimSearcher(opts)
}

// fetcher returns nil when no study place directory is configured.
func fetcher() places.Fetcher {
	opts := placeOptions()
	opts.URL = loadedConfig().Places.FetchURL
	if opts.URL == "" {
		return nil
	}
	return places.NewHTTPFetcher(opts)
}
