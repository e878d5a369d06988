// Package cli wires configuration, stores and services into the status-digest
// command tree: the HTTP server plus the batch jobs run by the automation.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jinzhu/inflection"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
	"github.com/Ezzyro/Airtable-Test/pkg/webhook"
)

// runtime holds the process-level collaborators shared by every subcommand.
// The override fields are nil in production and set by tests.
type runtime struct {
	version    string
	configPath string

	fs  afero.Fs
	now func() time.Time

	logger *zap.Logger
	store  tabular.Store
	sender webhook.Sender
}

func newRuntime(version string) *runtime {
	return &runtime{
		version: version,
		fs:      afero.NewOsFs(),
		now:     time.Now,
	}
}

// NewRootCommand creates the status-digest command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(newRuntime(version))
}

func newRootCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status-digest",
		Short: "Status summary automation for intake requests",
		Long: `status-digest builds status summaries from intake notes, posts them to
the team channel for review and records the reviewer's decision.

Configuration is read from config.yaml (or --config) with environment
variable overrides. Secrets are only read from the environment.`,
		Version:       rt.version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "Path to the YAML config file (default config.yaml)")

	cmd.AddCommand(
		newServeCommand(rt),
		newProcessCommand(rt),
		newIngestNotesCommand(rt),
		newIndexCommentsCommand(rt),
		newPingWebhookCommand(rt),
		newMigrateCommand(rt),
	)
	return cmd
}

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// countNoun renders "1 match", "3 matches".
func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
