package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/systmms/vaultkv/internal/credentials"
	kverrors "github.com/systmms/vaultkv/internal/errors"
)

// SecretPath is a slash-delimited reference split into the engine mount and
// the path within that engine. The split matters because KV v2 injects
// data/ or metadata/ between the two.
type SecretPath struct {
	Mount   string
	Subpath string
}

// ParseSecretPath validates and splits a secret reference. At least two
// segments are required: a mount alone cannot address a secret.
func ParseSecretPath(raw string) (SecretPath, error) {
	trimmed := strings.Trim(raw, "/")
	if trimmed != "" {
		parts := strings.SplitN(trimmed, "/", 2)
		if len(parts) == 2 && parts[1] != "" {
			return SecretPath{Mount: parts[0], Subpath: parts[1]}, nil
		}
	}
	return SecretPath{}, kverrors.UserError{
		Message:    fmt.Sprintf("Invalid secret path '%s'", raw),
		Details:    "a path needs an engine mount and a secret path within it",
		Suggestion: "Use mount/path format, e.g. secret/myapp/config",
	}
}

// readPath is the request path for a get. V2 engines nest reads under
// mount/data/.
func (p SecretPath) readPath(version credentials.KVVersion) string {
	if version == credentials.KVVersion2 {
		return p.Mount + "/data/" + p.Subpath
	}
	return p.Mount + "/" + p.Subpath
}

// listPath is the request path for a list. V2 engines list metadata.
func (p SecretPath) listPath(version credentials.KVVersion) string {
	if version == credentials.KVVersion2 {
		return p.Mount + "/metadata/" + p.Subpath
	}
	return p.Mount + "/" + p.Subpath
}

// SecretRecord is retrieved secret data plus the engine version that
// actually served it.
type SecretRecord struct {
	Data    map[string]string
	Version credentials.KVVersion
}

// versionAttempts returns the engine versions to try, in order. Auto is an
// explicit priority list rather than a branch: v2 first, v1 on fallback.
func versionAttempts(pref credentials.KVVersion) []credentials.KVVersion {
	switch pref {
	case credentials.KVVersion1:
		return []credentials.KVVersion{credentials.KVVersion1}
	case credentials.KVVersion2:
		return []credentials.KVVersion{credentials.KVVersion2}
	default:
		return []credentials.KVVersion{credentials.KVVersion2, credentials.KVVersion1}
	}
}

// Get retrieves the secret at rawPath. A non-empty key narrows the result
// to that single pair. pref selects the engine version: auto tries the v2
// layout and falls back to v1 only when the v2 read returns 404. A 403
// stops negotiation immediately since falling back would mask a policy
// problem as a missing secret.
func (c *Client) Get(ctx context.Context, rawPath, key string, pref credentials.KVVersion) (*SecretRecord, error) {
	path, err := ParseSecretPath(rawPath)
	if err != nil {
		return nil, err
	}

	attempts := versionAttempts(pref)
	for i, version := range attempts {
		res, err := c.Request(ctx, http.MethodGet, path.readPath(version), nil)
		if err != nil {
			return nil, err
		}

		if res.OK {
			data := unwrapSecretData(res.Body, version)
			if key == "" {
				return &SecretRecord{Data: data, Version: version}, nil
			}
			value, ok := data[key]
			if !ok {
				return nil, kverrors.NotFoundError{Path: rawPath, Key: key, Available: mapKeys(data)}
			}
			return &SecretRecord{Data: map[string]string{key: value}, Version: version}, nil
		}

		if res.StatusCode == http.StatusNotFound && i < len(attempts)-1 {
			c.debugf("KV v2 read of %s returned 404, retrying with the v1 layout", rawPath)
			continue
		}

		return nil, c.classifyFailure(res, rawPath, "read")
	}

	return nil, kverrors.NotFoundError{Path: rawPath}
}

// List enumerates the entries under rawPath. Entries ending in '/' are
// nested directories. An OK response with no keys is an empty listing,
// not an error. Version negotiation matches Get.
func (c *Client) List(ctx context.Context, rawPath string, pref credentials.KVVersion) ([]string, error) {
	path, err := ParseSecretPath(rawPath)
	if err != nil {
		return nil, err
	}

	attempts := versionAttempts(pref)
	for i, version := range attempts {
		res, err := c.Request(ctx, "LIST", path.listPath(version), nil)
		if err != nil {
			return nil, err
		}

		if res.OK {
			return stringSliceField(nestedMap(res.Body, "data"), "keys"), nil
		}

		if res.StatusCode == http.StatusNotFound && i < len(attempts)-1 {
			c.debugf("KV v2 list of %s returned 404, retrying with the v1 layout", rawPath)
			continue
		}

		return nil, c.classifyFailure(res, rawPath, "list")
	}

	return nil, kverrors.NotFoundError{Path: rawPath}
}

// classifyFailure maps a non-2xx result onto the error taxonomy.
func (c *Client) classifyFailure(res APIResult, path, operation string) error {
	switch {
	case res.StatusCode == http.StatusForbidden:
		return kverrors.PermissionError{Path: path, Operation: operation}
	case res.StatusCode == http.StatusNotFound:
		return kverrors.NotFoundError{Path: path}
	case res.StatusCode == http.StatusServiceUnavailable:
		return kverrors.SealedError{Address: c.creds.Address}
	case res.StatusCode >= 500:
		return kverrors.ServerError{StatusCode: res.StatusCode, Message: res.Errors()}
	default:
		msg := res.Errors()
		if msg == "" {
			msg = "unknown error"
		}
		return kverrors.UserError{
			Message:    fmt.Sprintf("Vault returned status %d for '%s'", res.StatusCode, path),
			Details:    msg,
			Suggestion: "Check the request path and the engine configuration",
		}
	}
}

// unwrapSecretData extracts the key/value payload from a read response.
// V2 responses nest the user data one level deeper than v1: data.data
// against plain data.
func unwrapSecretData(body map[string]interface{}, version credentials.KVVersion) map[string]string {
	data := nestedMap(body, "data")
	if version == credentials.KVVersion2 {
		data = nestedMap(data, "data")
	}

	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = stringifyValue(v)
	}
	return out
}

// stringifyValue renders a JSON value the way operators expect to see it
// in env vars and tables. Numbers keep their literal form, composites
// round-trip through JSON.
func stringifyValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'g', -1, 64)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(encoded)
	}
}

func mapKeys(data map[string]string) []string {
	out := make([]string, 0, len(data))
	for k := range data {
		out = append(out, k)
	}
	return out
}
