package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkv/internal/errors"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Invalid secret path",
		Details:    "path must include a mount and a secret name",
		Suggestion: "Use mount/path format, e.g. secret/myapp/config",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Invalid secret path")
	assert.Contains(t, errMsg, "mount and a secret name")
	assert.Contains(t, errMsg, "secret/myapp/config")
	assert.Contains(t, errMsg, "💡")
}

// TestUserErrorFallsBackToWrapped verifies the wrapped error is shown when
// no message is set
func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("underlying failure")
	err := errors.UserError{Err: base}

	assert.Contains(t, err.Error(), "underlying failure")
	assert.Equal(t, base, err.Unwrap())
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "environment",
		Value:      "staging",
		Message:    "unknown environment tag",
		Suggestion: "Valid environments: dev, qa, uat, prod",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "environment")
	assert.Contains(t, errMsg, "staging")
	assert.Contains(t, errMsg, "unknown environment tag")
	assert.Contains(t, errMsg, "dev, qa, uat, prod")
}

// TestAuthErrorFormatting verifies AuthError joins backend detail with a
// suggestion
func TestAuthErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.AuthError{
		Message:    "invalid role or secret ID",
		Suggestion: "Verify VAULT_ROLE_ID and VAULT_ROLE_SECRET are current",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Authentication failed")
	assert.Contains(t, errMsg, "invalid role or secret ID")
	assert.Contains(t, errMsg, "VAULT_ROLE_ID")
}

// TestPermissionErrorFormatting verifies PermissionError names the path and
// operation
func TestPermissionErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.PermissionError{Path: "secret/myapp/db", Operation: "read"}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Permission denied")
	assert.Contains(t, errMsg, "secret/myapp/db")
	assert.Contains(t, errMsg, "read access")
}

// TestNotFoundErrorForPath verifies the path-level message
func TestNotFoundErrorForPath(t *testing.T) {
	t.Parallel()

	err := errors.NotFoundError{Path: "secret/missing"}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Secret not found at 'secret/missing'")
	assert.Contains(t, errMsg, "mount point")
}

// TestNotFoundErrorForKeyListsAvailableSorted verifies a missing key names
// the available keys in sorted order
func TestNotFoundErrorForKeyListsAvailableSorted(t *testing.T) {
	t.Parallel()

	err := errors.NotFoundError{
		Path:      "secret/myapp/db",
		Key:       "passwrod",
		Available: []string{"username", "password", "host"},
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Key 'passwrod' not found")
	assert.Contains(t, errMsg, "Available keys: host, password, username")
}

// TestSealedErrorFormatting verifies SealedError points at the unseal step
func TestSealedErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.SealedError{Address: "https://vault.example.com:8200"}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Vault is sealed")
	assert.Contains(t, errMsg, "vault.example.com")
	assert.Contains(t, errMsg, "unsealed by an administrator")
}

// TestServerErrorFormatting verifies ServerError carries the status code
func TestServerErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ServerError{StatusCode: 500, Message: "internal error"}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "status 500")
	assert.Contains(t, errMsg, "internal error")
	assert.Contains(t, errMsg, "server logs")
}

// TestTransportErrorFormatting verifies TransportError renders message,
// cause and suggestion
func TestTransportErrorFormatting(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("dial tcp 10.0.0.1:8200: connect: connection refused")
	err := errors.TransportError{
		Address:    "https://10.0.0.1:8200",
		Message:    "Cannot connect to Vault",
		Suggestion: "Check that the VPN is connected and VAULT_ADDR is correct",
		Err:        base,
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Cannot connect to Vault")
	assert.Contains(t, errMsg, "connection refused")
	assert.Contains(t, errMsg, "VPN")
	assert.Equal(t, base, err.Unwrap())
}

// TestTransportErrorWithoutMessageUsesCause verifies the wrapped error text
// is used when no message is set
func TestTransportErrorWithoutMessageUsesCause(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("context deadline exceeded")
	err := errors.TransportError{Err: base}

	assert.Contains(t, err.Error(), "context deadline exceeded")
}

// TestCommandErrorFormatting verifies the exit code and message are shown
func TestCommandErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.CommandError{
		Command:  "npm start",
		ExitCode: 2,
	}

	assert.Contains(t, err.Error(), "Command 'npm start' failed")
	assert.Contains(t, err.Error(), "exit code: 2")
}

// TestWrapCommandNotFound verifies command not found errors have helpful suggestions
func TestWrapCommandNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command        string
		wantSuggestion string
	}{
		{command: "npm", wantSuggestion: "nodejs.org"},
		{command: "docker", wantSuggestion: "docker.com"},
		{command: "some-custom-tool", wantSuggestion: "installed and in your PATH"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			err := errors.WrapCommandNotFound(tt.command, fmt.Errorf("exec: %q: executable file not found in $PATH", tt.command))

			var cerr errors.CommandError
			assert.ErrorAs(t, err, &cerr)
			assert.Contains(t, err.Error(), "command not found")
			assert.Contains(t, err.Error(), tt.wantSuggestion)
		})
	}
}
