// Package credentials resolves Vault connection settings from process
// environment variables and credential files.
//
// Resolution follows a strict precedence contract. With an environment tag
// (--env dev), process environment variables are ignored entirely and only
// the tagged credential file is consulted, so operators can switch
// environments without unsetting their shell. Without a tag, process
// variables win and the default credential file fills unset fields. The
// first credential file found among the ordered candidates is the only one
// read; settings are never merged across files.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/logging"
)

// KVVersion selects which KV engine protocol to speak.
type KVVersion string

const (
	// KVVersionAuto probes v2 first and falls back to v1 on 404.
	KVVersionAuto KVVersion = "auto"
	// KVVersion1 pins the v1 path layout with no fallback.
	KVVersion1 KVVersion = "1"
	// KVVersion2 pins the v2 path layout with no fallback.
	KVVersion2 KVVersion = "2"
)

// ParseKVVersion validates a kv-version flag, variable or file value.
func ParseKVVersion(s string) (KVVersion, error) {
	switch KVVersion(s) {
	case KVVersionAuto, KVVersion1, KVVersion2:
		return KVVersion(s), nil
	}
	return "", kverrors.ConfigError{
		Field:      "kv-version",
		Value:      s,
		Message:    "invalid KV version",
		Suggestion: "Valid values: auto, 1, 2",
	}
}

// ValidEnvironments are the deployment tags credential files can be scoped
// to, as credentials.<env> files.
var ValidEnvironments = []string{"dev", "qa", "uat", "prod"}

// Credentials is a resolved Vault connection record. After Resolve returns,
// exactly one authentication method is active: Token set, or the AppRole
// pair set. The record is not mutated afterwards except for Token, which
// AppRole login populates in place.
type Credentials struct {
	Address     string
	Token       string
	RoleID      string
	RoleSecret  string
	Namespace   string
	SkipVerify  bool
	KVVersion   KVVersion
	Environment string
}

// HasAppRole reports whether a complete AppRole pair is present.
func (c *Credentials) HasAppRole() bool {
	return c.RoleID != "" && c.RoleSecret != ""
}

// Resolver locates and validates credentials. SearchDirs overrides the
// default credential file directories; tests point it at temp dirs. When
// SearchDirs is set the working-directory fallback is disabled too, so the
// caller fully controls which files can be found.
type Resolver struct {
	Logger     *logging.Logger
	SearchDirs []string
}

// NewResolver creates a resolver using the default search locations.
func NewResolver(logger *logging.Logger) *Resolver {
	return &Resolver{Logger: logger}
}

// Resolve produces the credential record for env. Empty env means the
// default environment. Resolution never contacts the network; it fails
// closed with a ConfigError when the record would be unusable.
func (r *Resolver) Resolve(env string) (*Credentials, error) {
	if env != "" && !isValidEnvironment(env) {
		return nil, kverrors.ConfigError{
			Field:      "environment",
			Value:      env,
			Message:    "unknown environment tag",
			Suggestion: "Valid environments: " + strings.Join(ValidEnvironments, ", "),
		}
	}

	creds := &Credentials{KVVersion: KVVersionAuto, Environment: env}

	if env == "" {
		if err := r.fromProcessEnv(creds); err != nil {
			return nil, err
		}
	} else {
		r.debugf("Environment '%s' selected, ignoring process variables", env)
	}

	if path := r.findCredentialFile(env); path != "" {
		r.debugf("Loading credentials from %s", path)
		if err := loadCredentialFile(path, creds); err != nil {
			return nil, err
		}
	}

	if err := r.validate(creds, env); err != nil {
		return nil, err
	}

	// A static token supersedes the AppRole pair
	if creds.Token != "" {
		creds.RoleID = ""
		creds.RoleSecret = ""
	}

	creds.Address = strings.TrimRight(creds.Address, "/")
	return creds, nil
}

func (r *Resolver) fromProcessEnv(creds *Credentials) error {
	creds.Address = os.Getenv("VAULT_ADDR")
	creds.Token = os.Getenv("VAULT_TOKEN")
	creds.RoleID = os.Getenv("VAULT_ROLE_ID")
	creds.RoleSecret = os.Getenv("VAULT_ROLE_SECRET")
	creds.Namespace = os.Getenv("VAULT_NAMESPACE")
	creds.SkipVerify = strings.EqualFold(os.Getenv("VAULT_SKIP_VERIFY"), "true")

	if v := os.Getenv("VAULT_KV_VERSION"); v != "" {
		parsed, err := ParseKVVersion(v)
		if err != nil {
			return err
		}
		creds.KVVersion = parsed
	}
	return nil
}

// candidatePaths returns the ordered credential file locations for env.
// The working-directory .credentials file is only a candidate for the
// default environment.
func (r *Resolver) candidatePaths(env string) []string {
	name := "credentials"
	if env != "" {
		name = "credentials." + env
	}

	if len(r.SearchDirs) > 0 {
		paths := make([]string, 0, len(r.SearchDirs))
		for _, dir := range r.SearchDirs {
			paths = append(paths, filepath.Join(dir, name))
		}
		return paths
	}

	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "vaultkv", name))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vaultkv", name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".vaultkv", name))
	}
	if env == "" {
		paths = append(paths, ".credentials")
	}
	return paths
}

func (r *Resolver) findCredentialFile(env string) string {
	for _, path := range r.candidatePaths(env) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func (r *Resolver) validate(creds *Credentials, env string) error {
	suffix := ""
	if env != "" {
		suffix = " for --env " + env
	}

	if creds.Address == "" {
		suggestion := "Export VAULT_ADDR, or create a credentials file under ~/.config/vaultkv/ with VAULT_ADDR and either VAULT_TOKEN or an AppRole pair"
		if env != "" {
			suggestion = fmt.Sprintf("Create credentials.%s under ~/.config/vaultkv/ or ~/.vaultkv/ with the %s connection settings", env, env)
		}
		return kverrors.ConfigError{
			Field:      "VAULT_ADDR",
			Message:    "not configured" + suffix,
			Suggestion: suggestion,
		}
	}

	if creds.Token == "" && !creds.HasAppRole() {
		return kverrors.ConfigError{
			Field:      "authentication",
			Message:    "no authentication configured" + suffix,
			Suggestion: "Provide either VAULT_TOKEN (token auth) or VAULT_ROLE_ID and VAULT_ROLE_SECRET (AppRole auth)",
		}
	}

	return nil
}

func (r *Resolver) debugf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Debug(format, args...)
	}
}

func isValidEnvironment(env string) bool {
	for _, valid := range ValidEnvironments {
		if env == valid {
			return true
		}
	}
	return false
}
