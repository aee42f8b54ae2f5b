package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/vaultkv/internal/credentials"
	kverrors "github.com/systmms/vaultkv/internal/errors"
)

func newTestClient(addr string, mutate func(*credentials.Credentials)) *Client {
	creds := &credentials.Credentials{
		Address:   addr,
		Token:     "test-token",
		KVVersion: credentials.KVVersionAuto,
	}
	if mutate != nil {
		mutate(creds)
	}
	return NewClient(creds, nil)
}

func TestClient_Request_SetsHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "team-a", r.Header.Get("X-Vault-Namespace"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/v1/secret/data/myapp", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(c *credentials.Credentials) {
		c.Namespace = "team-a"
	})

	res, err := client.Request(context.Background(), "GET", "secret/data/myapp", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestClient_Request_OmitsEmptyHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, tokenSet := r.Header["X-Vault-Token"]
		_, nsSet := r.Header["X-Vault-Namespace"]
		assert.False(t, tokenSet, "token header should be absent without a token")
		assert.False(t, nsSet, "namespace header should be absent without a namespace")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(c *credentials.Credentials) {
		c.Token = ""
		c.Namespace = ""
	})

	res, err := client.Request(context.Background(), "GET", "sys/seal-status", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestClient_Request_NormalizesAddressAndPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/myapp", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Trailing slash on the address and leading slash on the path must not
	// produce /v1//...
	client := newTestClient(server.URL+"/", nil)

	res, err := client.Request(context.Background(), "GET", "/secret/myapp", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestClient_Request_NonOKIsResultNotError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []string{"permission denied"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	res, err := client.Request(context.Background(), "GET", "secret/data/myapp", nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "permission denied", res.Errors())
}

func TestClient_Request_UnparseableBodyDegradesToEmptyMap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	res, err := client.Request(context.Background(), "GET", "secret/data/myapp", nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.NotNil(t, res.Body)
	assert.Empty(t, res.Body)
}

func TestClient_Request_SendsJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "my-role", body["role_id"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	res, err := client.Request(context.Background(), "POST", "auth/approle/login", map[string]interface{}{
		"role_id":   "my-role",
		"secret_id": "my-secret",
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestClient_Request_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab an address nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := newTestClient(addr, nil)

	_, err := client.Request(context.Background(), "GET", "sys/seal-status", nil)
	require.Error(t, err)

	var terr kverrors.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Message, "Could not connect to")
	assert.Contains(t, terr.Suggestion, "VPN")
}

func TestClient_Request_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	client.http.Timeout = 20 * time.Millisecond

	_, err := client.Request(context.Background(), "GET", "secret/data/slow", nil)
	require.Error(t, err)

	var terr kverrors.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Message, "timed out")
}

func TestClient_Request_TLSVerificationFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// The test server certificate is self-signed, so a verifying client
	// must fail the handshake.
	client := newTestClient(server.URL, nil)

	_, err := client.Request(context.Background(), "GET", "sys/seal-status", nil)
	require.Error(t, err)

	var terr kverrors.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Message, "TLS verification failed")
	assert.Contains(t, terr.Suggestion, "VAULT_SKIP_VERIFY")
}

func TestClient_Request_SkipVerifyAllowsSelfSigned(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"sealed": false})
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(c *credentials.Credentials) {
		c.SkipVerify = true
	})

	res, err := client.Request(context.Background(), "GET", "sys/seal-status", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, false, res.Body["sealed"])
}

func TestAPIResult_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{
			name: "joins multiple errors",
			body: map[string]interface{}{"errors": []interface{}{"first", "second"}},
			want: "first; second",
		},
		{
			name: "single error",
			body: map[string]interface{}{"errors": []interface{}{"permission denied"}},
			want: "permission denied",
		},
		{
			name: "no errors field",
			body: map[string]interface{}{"data": map[string]interface{}{}},
			want: "",
		},
		{
			name: "empty body",
			body: map[string]interface{}{},
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := APIResult{Body: tt.body}
			assert.Equal(t, tt.want, res.Errors())
		})
	}
}
