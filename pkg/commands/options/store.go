package options

import (
	"github.com/spf13/cobra"
)

// StoreOptions selects where records live for a command.
type StoreOptions struct {
	Ephemeral bool
}

func AddStoreArgs(cmd *cobra.Command, o *StoreOptions) {
	cmd.PersistentFlags().BoolVar(&o.Ephemeral, "ephemeral", false,
		"Keep records in memory only, nothing is read from or written to disk.")
}
