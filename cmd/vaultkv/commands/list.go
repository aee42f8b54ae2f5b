package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/vaultkv/internal/output"
)

func NewListCommand(app *App) *cobra.Command {
	var kvVersion string

	cmd := &cobra.Command{
		Use:   "list <mount/path>",
		Short: "List the secrets under a path",
		Long: `List the entries stored under a path. Entries ending in '/' are
nested directories that can be listed in turn.

Examples:
  vaultkv list secret/myapp
  vaultkv --env prod list secret/payments --kv-version 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, creds, err := resolveClient(app)
			if err != nil {
				return err
			}

			pref, err := kvPreference(kvVersion, creds)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := client.EnsureToken(ctx); err != nil {
				return err
			}

			entries, err := client.List(ctx, args[0], pref)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "No secrets found at this path")
				return nil
			}

			fmt.Println(output.RenderList(args[0], entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&kvVersion, "kv-version", "auto", "KV engine version: auto, 1 or 2")

	return cmd
}
