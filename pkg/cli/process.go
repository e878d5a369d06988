package cli

import (
	"github.com/spf13/cobra"
)

func newProcessCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "process <intake-id>",
		Short: "Build an intake's status summary and post it for review",
		Long: `Compose the status summary for one intake from its notes, refine it
with the configured model when available, and post the review card.

Examples:
  status-digest process DATA-1042`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.processor.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}
