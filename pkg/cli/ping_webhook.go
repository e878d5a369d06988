package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPingWebhookCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ping-webhook",
		Short: "Send a test card to the chat relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.publisher.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("webhook test failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test message sent")
			return nil
		},
	}
}
