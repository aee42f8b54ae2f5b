package commands

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/output"
)

func NewGetCommand(app *App) *cobra.Command {
	var (
		key        string
		show       bool
		format     string
		kvVersion  string
		outputPath string
		copyValue  bool
	)

	cmd := &cobra.Command{
		Use:   "get <mount/path>",
		Short: "Retrieve a secret from the KV engine",
		Long: `Retrieve a secret and print it in the chosen format.

Values are masked by default; pass --show to reveal them. The raw format
always prints the plain value so it can be piped into other tools.

Examples:
  # Show all keys of a secret (values masked)
  vaultkv get secret/myapp/database

  # Reveal one value for scripting
  vaultkv get secret/myapp/database --key password --format raw

  # Render an env file snippet using the qa credentials
  vaultkv --env qa get secret/myapp/database --format env

  # Write the rendered JSON to a file
  vaultkv get secret/myapp/database --format json --output secrets.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			if copyValue && key == "" {
				return kverrors.UserError{
					Message:    "--copy requires --key",
					Suggestion: "Select the value to copy with --key <name>",
				}
			}

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

			record, err := client.Get(ctx, args[0], key, pref)
			if err != nil {
				return err
			}

			if len(record.Data) == 0 {
				return kverrors.UserError{
					Message:    "No data found at this path",
					Suggestion: "The secret exists but holds no keys; check the path or write data to it",
				}
			}

			if copyValue {
				if err := clipboard.WriteAll(record.Data[key]); err != nil {
					return kverrors.UserError{
						Message:    "Could not copy the value to the clipboard",
						Details:    err.Error(),
						Suggestion: "Clipboard access needs a display session; use --format raw and a pipe instead",
					}
				}
				app.Logger.Info("Value of '%s' copied to clipboard", key)
				return nil
			}

			rendered, err := output.Render(outFormat, record.Data, show, key)
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o600); err != nil {
					return kverrors.UserError{
						Message:    fmt.Sprintf("Could not write to '%s'", outputPath),
						Details:    err.Error(),
						Suggestion: "Check that the directory exists and is writable",
					}
				}
				app.Logger.Info("Wrote %d values to %s", len(record.Data), outputPath)
				return nil
			}

			fmt.Println(rendered)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Return only this key from the secret")
	cmd.Flags().BoolVarP(&show, "show", "s", false, "Show secret values instead of masking them")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, yaml, env, raw")
	cmd.Flags().StringVar(&kvVersion, "kv-version", "auto", "KV engine version: auto, 1 or 2")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the rendered output to a file instead of stdout")
	cmd.Flags().BoolVarP(&copyValue, "copy", "c", false, "Copy the value of --key to the clipboard")

	return cmd
}
