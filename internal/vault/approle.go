package vault

import (
	"context"
	"fmt"
	"net/http"

	kverrors "github.com/systmms/vaultkv/internal/errors"
)

// approleLoginPath is the fixed AppRole mount. Custom auth mounts are out
// of scope for this tool.
const approleLoginPath = "auth/approle/login"

// AuthSession describes an authenticated token as the backend reported it.
type AuthSession struct {
	Token      string
	Accessor   string
	Policies   []string
	TTLSeconds int
	Renewable  bool
}

// Login exchanges the configured AppRole pair for a client token. Every
// call performs exactly one POST: tokens are never cached, refreshed or
// renewed here.
func (c *Client) Login(ctx context.Context) (*AuthSession, error) {
	res, err := c.Request(ctx, http.MethodPost, approleLoginPath, map[string]interface{}{
		"role_id":   c.creds.RoleID,
		"secret_id": c.creds.RoleSecret,
	})
	if err != nil {
		return nil, err
	}

	if !res.OK {
		msg := res.Errors()
		if msg == "" {
			msg = fmt.Sprintf("status %d", res.StatusCode)
		}
		return nil, kverrors.AuthError{
			Message:    "AppRole login rejected - " + msg,
			Suggestion: "Verify VAULT_ROLE_ID and VAULT_ROLE_SECRET are current; secret IDs expire and can be rotated",
		}
	}

	auth := nestedMap(res.Body, "auth")
	token := stringField(auth, "client_token")
	if token == "" {
		return nil, kverrors.AuthError{
			Message:    "no token received from vault",
			Suggestion: "Check the AppRole configuration on the server",
		}
	}

	return &AuthSession{
		Token:      token,
		Accessor:   stringField(auth, "accessor"),
		Policies:   stringSliceField(auth, "policies"),
		TTLSeconds: intField(auth, "lease_duration"),
		Renewable:  boolField(auth, "renewable"),
	}, nil
}

// EnsureToken guarantees the credentials carry a usable token, performing
// the AppRole exchange when only the role pair is configured. Secret reads
// call this once before their first request.
func (c *Client) EnsureToken(ctx context.Context) error {
	if c.creds.Token != "" {
		return nil
	}

	if !c.creds.HasAppRole() {
		return kverrors.AuthError{
			Message:    "no valid authentication method available",
			Suggestion: "Set VAULT_TOKEN, or VAULT_ROLE_ID and VAULT_ROLE_SECRET, or add them to a credentials file",
		}
	}

	label := ""
	if c.creds.Environment != "" {
		label = " (" + c.creds.Environment + ")"
	}
	c.infof("Authenticating via AppRole%s...", label)

	session, err := c.Login(ctx)
	if err != nil {
		return err
	}

	c.creds.Token = session.Token
	return nil
}
