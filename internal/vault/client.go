package vault

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/systmms/vaultkv/internal/credentials"
	kverrors "github.com/systmms/vaultkv/internal/errors"
	"github.com/systmms/vaultkv/internal/logging"
)

// RequestTimeout bounds every exchange with the backend, including
// connection setup and TLS handshake.
const RequestTimeout = 10 * time.Second

// APIResult is the uniform outcome of a single API call. Non-2xx statuses
// are results, not errors: each operation classifies them against its own
// taxonomy. Only transport failures surface as errors from Request.
type APIResult struct {
	StatusCode int
	Body       map[string]interface{}
	OK         bool
}

// Errors joins the backend's errors array for display.
func (r APIResult) Errors() string {
	return strings.Join(stringSliceField(r.Body, "errors"), "; ")
}

// Client talks to a single Vault server with one set of credentials.
// It covers the read-only surface: AppRole login, KV reads and lists,
// and the health probes used by status.
type Client struct {
	creds  *credentials.Credentials
	http   *http.Client
	logger *logging.Logger
}

// NewClient builds a client for the resolved credentials.
func NewClient(creds *credentials.Credentials, logger *logging.Logger) *Client {
	httpClient := &http.Client{Timeout: RequestTimeout}
	if creds.SkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{creds: creds, http: httpClient, logger: logger}
}

// Request performs one API exchange. method is GET, POST or LIST. The
// response body is decoded as JSON when possible; anything unparseable
// degrades to an empty map so callers can rely on Body being non-nil.
func (c *Client) Request(ctx context.Context, method, path string, body map[string]interface{}) (APIResult, error) {
	endpoint := strings.TrimSuffix(c.creds.Address, "/") + "/v1/" + strings.TrimPrefix(path, "/")

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return APIResult{}, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return APIResult{}, fmt.Errorf("creating %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.creds.Token != "" {
		req.Header.Set("X-Vault-Token", c.creds.Token)
	}
	if c.creds.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.creds.Namespace)
	}

	c.debugf("%s %s", method, endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		return APIResult{}, c.transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return APIResult{}, c.transportError(err)
	}

	result := APIResult{
		StatusCode: resp.StatusCode,
		Body:       map[string]interface{}{},
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	if len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var parsed map[string]interface{}
		if err := dec.Decode(&parsed); err == nil && parsed != nil {
			result.Body = parsed
		}
	}

	c.debugf("%s %s -> %d", method, endpoint, result.StatusCode)
	return result, nil
}

// transportError maps low-level HTTP failures onto operator triage text.
// The categories mirror what support tickets actually report: VPN or DNS
// problems, broken TLS, and slow or dead servers.
func (c *Client) transportError(err error) error {
	lower := strings.ToLower(err.Error())

	switch {
	case isTimeout(err):
		return kverrors.TransportError{
			Address:    c.creds.Address,
			Message:    fmt.Sprintf("Request to %s timed out after %s", c.creds.Address, RequestTimeout),
			Suggestion: "Check network connectivity and Vault server status",
			Err:        err,
		}
	case strings.Contains(lower, "x509") || strings.Contains(lower, "tls") || strings.Contains(lower, "certificate"):
		return kverrors.TransportError{
			Address:    c.creds.Address,
			Message:    "TLS verification failed for " + c.creds.Address,
			Suggestion: "For servers with self-signed certificates set VAULT_SKIP_VERIFY=true (avoid in production)",
			Err:        err,
		}
	default:
		return kverrors.TransportError{
			Address:    c.creds.Address,
			Message:    "Could not connect to " + c.creds.Address,
			Suggestion: "Possible causes: VPN not connected, wrong VAULT_ADDR, or the Vault server is down",
			Err:        err,
		}
	}
}

func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) infof(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(format, args...)
	}
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}

// nestedMap returns the map under key, or nil when absent or mistyped.
func nestedMap(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSliceField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intField(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		f, _ := v.Float64()
		return int(f)
	case float64:
		return int(v)
	}
	return 0
}

func boolField(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}
