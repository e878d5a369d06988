package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/config"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migrations for the postgres store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Store.Driver != config.StorePostgres {
				return fmt.Errorf("migrate requires the %s store driver, got %q: %w",
					config.StorePostgres, a.cfg.Store.Driver, apperrors.ErrConfiguration)
			}
			db, err := a.database(cmd.Context())
			if err != nil {
				return err
			}
			result, err := db.Migrate()
			if err != nil {
				return err
			}
			if result.Applied() {
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated schema from version %d to %d\n", result.From, result.To)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema already at version %d\n", result.To)
			}
			return nil
		},
	}
}
