// Package execenv runs child processes with secret values injected as
// environment variables. Secrets arrive sealed and are revealed only at
// the moment the child environment is assembled.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/logging"
	"github.com/systmms/vaultkv/internal/secure"
)

// Executor handles running commands with ephemeral environment variables
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Options configures command execution
type Options struct {
	Command    []string                        // Command and arguments to run
	Secrets    map[string]*secure.SecureBuffer // Env var name to sealed value
	PrintVars  bool                            // Print injected variable names (never values)
	WorkingDir string                          // Working directory for the command
	Timeout    time.Duration                   // Zero means no timeout
}

// Exec runs a command with the secret variables merged into the inherited
// environment. The child's exit code is reported through CommandError so
// the caller can propagate it.
func (e *Executor) Exec(ctx context.Context, options Options) error {
	if len(options.Command) == 0 {
		return kverrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g. vaultkv exec secret/myapp/env -- npm start)",
		}
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmdName := options.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return kverrors.WrapCommandNotFound(cmdName, err)
	}

	if options.PrintVars {
		e.printVariableNames(options.Secrets)
	}

	env, err := e.buildEnvironment(options.Secrets)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Secret variables injected: %d", len(options.Secrets))

	if err := cmd.Start(); err != nil {
		return kverrors.CommandError{
			Command:    strings.Join(options.Command, " "),
			Message:    err.Error(),
			Suggestion: "Check the command and its arguments",
		}
	}

	// Forward interrupt and terminate so the child can shut down cleanly
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	signal.Stop(sigCh)

	if waitErr == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return kverrors.CommandError{
			Command:    strings.Join(options.Command, " "),
			Message:    fmt.Sprintf("timed out after %s", options.Timeout),
			Suggestion: "Raise --timeout or investigate why the command hangs",
		}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := 1
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.ExitStatus() > 0 {
			code = status.ExitStatus()
		}
		return kverrors.CommandError{
			Command:  strings.Join(options.Command, " "),
			ExitCode: code,
		}
	}

	return kverrors.CommandError{
		Command:    strings.Join(options.Command, " "),
		Message:    waitErr.Error(),
		Suggestion: "Check the command output above for details",
	}
}

// buildEnvironment merges the inherited environment with the secret
// variables. Secrets win over inherited values; values are revealed here,
// immediately before process start.
func (e *Executor) buildEnvironment(secrets map[string]*secure.SecureBuffer) ([]string, error) {
	envMap := make(map[string]string)

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	for name, buf := range secrets {
		if _, exists := envMap[name]; exists {
			e.logger.Warn("Secret value overrides inherited environment variable %s", name)
		}
		value, err := buf.Reveal()
		if err != nil {
			return nil, fmt.Errorf("revealing value for %s: %w", name, err)
		}
		envMap[name] = value
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, key+"="+value)
	}

	// Sort for consistent ordering (helps with debugging)
	sort.Strings(result)

	return result, nil
}

// printVariableNames lists the injected variable names on stderr. Values
// never appear, not even masked.
func (e *Executor) printVariableNames(secrets map[string]*secure.SecureBuffer) {
	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "Injecting %d environment variables:\n", len(names))
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
}
