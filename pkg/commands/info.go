package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the config and where records are stored.",
		Example: `
notiq info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openService(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{
				Config:  loadedConfig(),
				Service: svc,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
