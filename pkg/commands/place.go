package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/commands/options"
	"tableflip.dev/notiq/pkg/runner/place"
)

func addPlace(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "place",
		Aliases: []string{"places"},
		Short:   "Save, search and list study places.",
		Example: `
notiq place add --query "Doe Library Berkeley" --type library
notiq place add --name "Kitchen table" --type other --custom Home --lat 37.87 --lon -122.26
notiq place search "blue bottle oakland"
notiq place fetch
`,
	}

	addPlaceAdd(cmd)
	addPlaceDelete(cmd)
	addPlaceList(cmd)
	addPlaceSearch(cmd)
	addPlaceFetch(cmd)

	topLevel.AddCommand(cmd)
}

func newPlaceRunner(cmd *cobra.Command, io *options.IDOptions) (*place.Place, error) {
	svc, err := openService(cmd.Context())
	if err != nil {
		return nil, err
	}
	p := &place.Place{
		Service:  svc,
		Searcher: searcher(),
		Fetcher:  fetcher(),
		Output:   oo.Structured(),
		Now:      time.Now(),
	}
	if io != nil {
		p.ShowID = io.ShowID
	}
	return p, nil
}

func addPlaceAdd(parent *cobra.Command) {
	po := &options.PlaceOptions{}
	io := &options.IDOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Save a study place.",
		Long: `Save a study place either from coordinates or from a location search.
With --query the best match is used; add -i to pick from the matches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if po.Name == "" {
				po.Name = strings.Join(args, " ")
			}
			p, err := newPlaceRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(p.Add(cmd.Context(), po.Input(), po.Query, i.Interactive))
		},
	}

	options.AddPlaceArgs(cmd, po)
	options.InteractiveArgs(cmd, i)
	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addPlaceDelete(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete study places.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := newPlaceRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			for _, arg := range args {
				id, err := resolveID(placeIDs(p.Service.Snapshot()), arg)
				if err != nil {
					return oo.HandleError(err)
				}
				if err := p.Delete(cmd.Context(), id); err != nil {
					return oo.HandleError(err)
				}
			}
			return nil
		},
	}

	parent.AddCommand(cmd)
}

func addPlaceList(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved study places.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := newPlaceRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(p.List(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}

func addPlaceSearch(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Look up locations without saving anything.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := newPlaceRunner(cmd, nil)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(p.Search(cmd.Context(), strings.Join(args, " ")))
		},
	}

	parent.AddCommand(cmd)
}

func addPlaceFetch(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Replace directory study places with the ones from places.fetch_url.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := newPlaceRunner(cmd, io)
			if err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(p.Fetch(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	parent.AddCommand(cmd)
}
