package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ezzyro/Airtable-Test/pkg/services"
)

type indexCommentsFlags struct {
	issueIDs string // Comma separated parent identifiers
}

func newIndexCommentsCommand(rt *runtime) *cobra.Command {
	flags := &indexCommentsFlags{}

	cmd := &cobra.Command{
		Use:   "index-comments",
		Short: "List comments of issues under the given parents",
		Long: `Scan the issue sync table and print, as JSON, the comments of every
issue whose parent matches one of the requested identifiers.

Examples:
  status-digest index-comments --issue-ids "DATA-1,DATA-2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			matches, err := a.indexer.Index(cmd.Context(), services.ParseParentIDs(flags.issueIDs))
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), matches); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), countNoun(len(matches), "match"))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.issueIDs, "issue-ids", "", "Comma separated parent issue identifiers")
	_ = cmd.MarkFlagRequired("issue-ids")

	return cmd
}
