package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/systmms/vaultkv/internal/vault"
)

func NewStatusCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check connectivity and authentication",
		Long: `Probe the configured Vault server and report connectivity, seal state
and token health. The seal probe runs unauthenticated, so status can
diagnose a broken token as long as the server is reachable.

Exits nonzero when the server is unreachable, sealed, or the credentials
do not authenticate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, creds, err := resolveClient(app)
			if err != nil {
				return err
			}

			st := client.Status(cmd.Context())

			if healthy := renderStatus(os.Stdout, creds.Address, app.Env, st); !healthy {
				os.Exit(1)
			}
			return nil
		},
	}

	return cmd
}

// renderStatus writes the diagnostic report and reports whether the
// backend is fully healthy.
func renderStatus(w io.Writer, address, env string, st *vault.Status) bool {
	okMark := color.New(color.FgGreen).Sprint("OK")
	failMark := color.New(color.FgRed).Sprint("FAILED")

	label := ""
	if env != "" {
		label = fmt.Sprintf(" [%s]", strings.ToUpper(env))
	}
	fmt.Fprintf(w, "\nVault Status%s: %s\n", label, address)
	fmt.Fprintln(w, strings.Repeat("-", 50))

	if !st.Connected {
		fmt.Fprintf(w, "Connection: %s - %s\n", failMark, st.Reason)
		return false
	}

	fmt.Fprintf(w, "Connection: %s\n", okMark)
	if st.Version != "" {
		fmt.Fprintf(w, "Server Version: %s\n", st.Version)
	}

	if st.Sealed {
		fmt.Fprintf(w, "Sealed: %s\n", color.New(color.FgYellow).Sprint("Yes (needs unseal)"))
		fmt.Fprintln(w, "\nVault is sealed. Contact an administrator to unseal.")
		return false
	}
	fmt.Fprintln(w, "Sealed: No")

	if !st.Authenticated {
		reason := st.Reason
		if reason == "" {
			reason = "Token invalid"
		}
		fmt.Fprintf(w, "Authentication: %s - %s\n", failMark, reason)
		return false
	}

	fmt.Fprintf(w, "Authentication: %s\n", okMark)
	fmt.Fprintf(w, "Token Accessor: %s\n", st.Accessor)
	fmt.Fprintf(w, "Policies: %s\n", strings.Join(st.Policies, ", "))
	fmt.Fprintf(w, "Token TTL: %s\n", formatTTL(st.TTLSeconds))
	if st.Renewable {
		fmt.Fprintln(w, "Renewable: Yes")
	} else {
		fmt.Fprintln(w, "Renewable: No")
	}

	return true
}

// formatTTL renders a TTL the way operators read it. Zero or negative
// means the token never expires.
func formatTTL(seconds int) string {
	if seconds <= 0 {
		return "No expiration"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm remaining", hours, minutes)
}
