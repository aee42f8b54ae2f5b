package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/systmms/vaultkv/cmd/vaultkv/commands"
	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		// Propagate the child's exit code without an extra error line
		var cmdErr kverrors.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
			os.Exit(cmdErr.ExitCode)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		env     string
		debug   bool
		noColor bool
	)

	app := &commands.App{}

	rootCmd := &cobra.Command{
		Use:   "vaultkv",
		Short: "Read-only access to HashiCorp Vault KV secrets",
		Long: `vaultkv retrieves secrets from HashiCorp Vault KV engines (v1 and v2)
with per-environment credentials, masked output and environment injection.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			app.Env = env
			app.Debug = debug
			app.NoColor = noColor
			app.Logger = logger

			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Credential environment: dev, qa, uat or prod")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		commands.NewGetCommand(app),
		commands.NewListCommand(app),
		commands.NewStatusCommand(app),
		commands.NewExecCommand(app),
		commands.NewCompletionCommand(app),
	)

	return rootCmd.Execute()
}
