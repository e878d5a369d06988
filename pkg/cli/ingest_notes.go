package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Ezzyro/Airtable-Test/pkg/services"
)

type ingestNotesFlags struct {
	record      string // Record reference, "<intake id>|<record id>"
	payload     string // Inline payload
	payloadFile string // Payload read from a file
}

func newIngestNotesCommand(rt *runtime) *cobra.Command {
	flags := &ingestNotesFlags{}

	cmd := &cobra.Command{
		Use:   "ingest-notes",
		Short: "Write an intake's daily status fields as status notes",
		Long: `Upsert one status note per category from a daily status payload.
A category that already has a note today is updated; otherwise a new note is
created. The named outputs are printed as JSON.

Examples:
  status-digest ingest-notes --record "DATA-1|recA" --payload '{"version":1,"todaysDate":"2024-01-17","summary":{"Blockers":"API down"}}'
  status-digest ingest-notes --record "DATA-1|recA" --payload-file payload.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestNotes(cmd.Context(), rt, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&flags.record, "record", "", "Record reference (intake ID, optionally followed by |record ID)")
	cmd.Flags().StringVar(&flags.payload, "payload", "", "Status payload (JSON or YAML)")
	cmd.Flags().StringVar(&flags.payloadFile, "payload-file", "", "Path to a file holding the status payload")
	_ = cmd.MarkFlagRequired("record")
	cmd.MarkFlagsMutuallyExclusive("payload", "payload-file")
	cmd.MarkFlagsOneRequired("payload", "payload-file")

	return cmd
}

func runIngestNotes(ctx context.Context, rt *runtime, flags *ingestNotesFlags, out, errOut io.Writer) error {
	payload := flags.payload
	if flags.payloadFile != "" {
		data, err := afero.ReadFile(rt.fs, flags.payloadFile)
		if err != nil {
			return fmt.Errorf("failed to read payload file: %w", err)
		}
		payload = string(data)
	}

	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.upserter.Upsert(ctx, flags.record, payload)
	if err != nil {
		return err
	}
	if err := printJSON(out, report); err != nil {
		return err
	}

	fmt.Fprintf(errOut, "%s: %s updated, %s created, %s failed\n",
		report.IntakeID,
		countNoun(report.Count(services.UpsertUpdated), "category"),
		countNoun(report.Count(services.UpsertCreated), "category"),
		countNoun(report.Count(services.UpsertFailed), "category"))
	return nil
}
