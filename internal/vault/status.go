package vault

import (
	"context"
	"fmt"
	"net/http"
)

// Status is a connectivity and authentication diagnostic. Fields are
// filled in as far as the probes get; a failed probe sets Reason and
// leaves the later fields zero.
type Status struct {
	Connected     bool
	Sealed        bool
	Authenticated bool
	Version       string
	Accessor      string
	Policies      []string
	TTLSeconds    int
	Renewable     bool
	Reason        string
}

// Status probes the backend and the configured credentials. The seal
// probe runs unauthenticated so connectivity can be diagnosed with a
// broken token; when the backend reports sealed no login is attempted
// at all.
func (c *Client) Status(ctx context.Context) *Status {
	status := &Status{}

	res, err := c.Request(ctx, http.MethodGet, "sys/seal-status", nil)
	if err != nil {
		status.Reason = err.Error()
		return status
	}
	if !res.OK {
		status.Reason = fmt.Sprintf("Could not reach Vault (seal probe returned %d)", res.StatusCode)
		return status
	}

	status.Connected = true
	status.Version = stringField(res.Body, "version")
	status.Sealed = boolField(res.Body, "sealed")
	if status.Sealed {
		return status
	}

	if err := c.EnsureToken(ctx); err != nil {
		status.Reason = err.Error()
		return status
	}

	lookup, err := c.Request(ctx, http.MethodGet, "auth/token/lookup-self", nil)
	if err != nil {
		status.Reason = err.Error()
		return status
	}
	if !lookup.OK {
		status.Reason = "Token invalid or expired"
		return status
	}

	data := nestedMap(lookup.Body, "data")
	status.Authenticated = true
	status.Accessor = stringField(data, "accessor")
	status.Policies = stringSliceField(data, "policies")
	status.TTLSeconds = intField(data, "ttl")
	status.Renewable = boolField(data, "renewable")
	return status
}
