package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/execenv"
	"github.com/systmms/vaultkv/internal/output"
	"github.com/systmms/vaultkv/internal/secure"
)

func NewExecCommand(app *App) *cobra.Command {
	var (
		printVars  bool
		workingDir string
		timeout    int
		kvVersion  string
	)

	cmd := &cobra.Command{
		Use:   "exec <mount/path> -- <command> [args...]",
		Short: "Run a command with a secret injected as environment variables",
		Long: `Fetch a secret and run a command with its keys exported as environment
variables. Key names are upper-cased with '-' and '.' mapped to '_', the
same transform the env format uses. Values are injected directly into the
child environment and never written to disk.

The command must be separated from vaultkv arguments with '--'.

Examples:
  vaultkv exec secret/myapp/env -- npm start
  vaultkv --env qa exec secret/myapp/env --print -- python app.py
  vaultkv exec secret/myapp/env --timeout 300 -- ./migrate.sh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.ArgsLenAtDash() != 1 || len(args) < 2 {
				return kverrors.UserError{
					Message:    "exec needs a secret path and a command",
					Suggestion: "Use: vaultkv exec <mount/path> -- <command> [args...]",
				}
			}
			path, command := args[0], args[1:]

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

			record, err := client.Get(ctx, path, "", pref)
			if err != nil {
				return err
			}

			if len(record.Data) == 0 {
				return kverrors.UserError{
					Message:    "No data found at this path",
					Suggestion: "The secret exists but holds no keys to inject",
				}
			}

			secrets := make(map[string]*secure.SecureBuffer, len(record.Data))
			sources := make(map[string]string, len(record.Data))
			defer func() {
				for _, buf := range secrets {
					buf.Destroy()
				}
			}()

			for k, v := range record.Data {
				name := output.EnvName(k)
				if prev, clash := sources[name]; clash {
					app.Logger.Warn("Secret keys '%s' and '%s' both map to variable %s", prev, k, name)
					secrets[name].Destroy()
				}

				buf, err := secure.NewSecureBufferFromString(v)
				if err != nil {
					return kverrors.UserError{
						Message:    fmt.Sprintf("Failed to protect the value of '%s' in memory", k),
						Details:    err.Error(),
						Suggestion: "Try running with --debug for more information",
					}
				}
				sources[name] = k
				secrets[name] = buf
			}

			app.Logger.Info("Resolved %d environment variables from %s", len(secrets), path)

			executor := execenv.New(app.Logger)
			return executor.Exec(ctx, execenv.Options{
				Command:    command,
				Secrets:    secrets,
				PrintVars:  printVars,
				WorkingDir: workingDir,
				Timeout:    time.Duration(timeout) * time.Second,
			})
		},
	}

	cmd.Flags().BoolVar(&printVars, "print", false, "Print injected variable names (never values)")
	cmd.Flags().StringVar(&workingDir, "working-dir", "", "Working directory for the command")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Command timeout in seconds (0 for no timeout)")
	cmd.Flags().StringVar(&kvVersion, "kv-version", "auto", "KV engine version: auto, 1 or 2")

	return cmd
}
