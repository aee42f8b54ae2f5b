package errors

import (
	"fmt"
	"sort"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a credential or configuration problem detected
// before any network call is made
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// AuthError represents a rejected login or an invalid token
type AuthError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e AuthError) Error() string {
	msg := "Authentication failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}

	return msg
}

func (e AuthError) Unwrap() error {
	return e.Err
}

// PermissionError represents a 403 from the backend. The token is valid but
// its policies do not cover the requested path.
type PermissionError struct {
	Path      string
	Operation string
}

func (e PermissionError) Error() string {
	msg := fmt.Sprintf("Permission denied for %s on '%s'", e.Operation, e.Path)
	msg += "\n  💡 Try: Check that your token has " + e.Operation + " access to this path, or that the token has not expired"
	return msg
}

// NotFoundError represents a missing secret, or a missing key within an
// existing secret when Key is set
type NotFoundError struct {
	Path      string
	Key       string
	Available []string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("Secret not found at '%s'", e.Path) +
			"\n  💡 Try: Check that the path is correct and includes the mount point (e.g. secret/myapp/config)"
	}

	msg := fmt.Sprintf("Key '%s' not found in secret at '%s'", e.Key, e.Path)
	if len(e.Available) > 0 {
		keys := make([]string, len(e.Available))
		copy(keys, e.Available)
		sort.Strings(keys)
		msg += "\n  Details: Available keys: " + strings.Join(keys, ", ")
	}
	return msg
}

// SealedError represents a backend that reported itself sealed. Distinct
// from a connectivity failure: the server is reachable but cannot serve
// secrets until an administrator unseals it.
type SealedError struct {
	Address string
}

func (e SealedError) Error() string {
	msg := "Vault is sealed"
	if e.Address != "" {
		msg += " at " + e.Address
	}
	msg += "\n  💡 Try: The server needs to be unsealed by an administrator before secrets can be read"
	return msg
}

// ServerError represents a 5xx from the backend
type ServerError struct {
	StatusCode int
	Message    string
}

func (e ServerError) Error() string {
	msg := fmt.Sprintf("Vault server error (status %d)", e.StatusCode)
	if e.Message != "" {
		msg += "\n  Details: " + e.Message
	}
	msg += "\n  💡 Try: Check the Vault server logs, or retry once the server recovers"
	return msg
}

// TransportError represents a failure to complete an HTTP exchange at all:
// TLS handshake, connection setup, or timeout. The backend never produced a
// status code.
type TransportError struct {
	Address    string
	Message    string
	Suggestion string
	Err        error
}

func (e TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Err != nil && e.Message != "" {
		msg += "\n  Details: " + e.Err.Error()
	}

	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}

	return msg
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// CommandError represents a child process that could not be started or
// exited with a failure. ExitCode carries the child's code so the CLI can
// propagate it.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"npm":    "Install Node.js from https://nodejs.org/",
		"yarn":   "Install Yarn from https://yarnpkg.com/",
		"python": "Install Python from https://python.org/",
		"go":     "Install Go from https://golang.org/",
		"docker": "Install Docker from https://docker.com/",
		"git":    "Install Git from https://git-scm.com/",
		"make":   "Install Make (usually comes with build tools)",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
	}
}
