package commands

import (
	"github.com/systmms/vaultkv/internal/credentials"
	"github.com/systmms/vaultkv/internal/vault"
)

// resolveClient resolves credentials for the selected environment and
// builds a client around them. No network traffic happens here.
func resolveClient(app *App) (*vault.Client, *credentials.Credentials, error) {
	resolver := credentials.NewResolver(app.Logger)

	creds, err := resolver.Resolve(app.Env)
	if err != nil {
		return nil, nil, err
	}

	return vault.NewClient(creds, app.Logger), creds, nil
}

// kvPreference merges the --kv-version flag with the resolved credential
// preference. An explicit flag wins; auto defers to the credentials.
func kvPreference(flagValue string, creds *credentials.Credentials) (credentials.KVVersion, error) {
	parsed, err := credentials.ParseKVVersion(flagValue)
	if err != nil {
		return "", err
	}
	if parsed != credentials.KVVersionAuto {
		return parsed, nil
	}
	return creds.KVVersion, nil
}
