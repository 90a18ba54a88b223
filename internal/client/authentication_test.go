package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

func TestAuthenticationClient_SignIn(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		server, recorded := newJSONServer(t, http.StatusOK, map[string]interface{}{
			"signInResponse": map[string]interface{}{"token": "tok-123", "duration": 315360000000},
		})

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-123", client.Token())

		req := recorded.last(t)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/signIn", req.Path)
		assert.Equal(t, "json", req.Query.Get("form"))
		assert.Equal(t, "1.0", req.Query.Get("schema"))
		assert.Equal(t, "mpx-client/4.0.0", req.Header.Get("User-Agent"))

		httpReq := &http.Request{Header: req.Header}
		user, pass, hasAuth := httpReq.BasicAuth()
		assert.True(t, hasAuth)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)
	})

	t.Run("missing signInResponse", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, map[string]interface{}{"somethingElse": true})

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, client.Token())
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, map[string]interface{}{
			"signInResponse": map[string]interface{}{"token": ""},
		})

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, client.Token())
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusUnauthorized, map[string]interface{}{
			"isException": true,
			"title":       "com.theplatform.authentication.api.exception.AuthenticationException",
			"description": "Either 'user' does not exist or the password is incorrect.",
		})

		logger := &recordingLogger{}
		cfg := newTestConfig(mpx.EndpointAuthentication, server.URL)
		cfg.Logger = logger

		client := NewAuthenticationClient(cfg)

		ok, err := client.SignIn(context.Background(), "user", "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, client.Token())
		assert.Contains(t, logger.levels(), mpx.LevelNotice)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, "not json")

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		serverURL := server.URL
		server.Close()

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, serverURL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, mpx.IsTransport(err))
	})
}

func TestAuthenticationClient_SignOut(t *testing.T) {
	t.Parallel()

	t.Run("twice in a row", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			switch r.URL.Path {
			case "/signIn":
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"signInResponse": map[string]interface{}{"token": "tok-123"},
				})
			case "/signOut":
				assert.Equal(t, http.MethodPost, r.Method)

				var body map[string]map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "tok-123", body["signOut"]["token"])

				_ = json.NewEncoder(w).Encode(map[string]interface{}{"signOutResponse": map[string]interface{}{}})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		ok, err := client.SignIn(context.Background(), "user", "pass")
		require.NoError(t, err)
		require.True(t, ok)

		assert.True(t, client.SignOut(context.Background(), ""))
		assert.Empty(t, client.Token())
		assert.True(t, client.SignOut(context.Background(), ""))
	})

	t.Run("explicit token", func(t *testing.T) {
		t.Parallel()

		server, recorded := newJSONServer(t, http.StatusOK, map[string]interface{}{})

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		assert.True(t, client.SignOut(context.Background(), "other-token"))

		req := recorded.last(t)
		assert.Equal(t, "/signOut", req.Path)
		assert.JSONEq(t, `{"signOut":{"token":"other-token"}}`, string(req.Body))
	})

	t.Run("no token sends nothing", func(t *testing.T) {
		t.Parallel()

		server, recorded := newJSONServer(t, http.StatusOK, map[string]interface{}{})

		client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

		assert.True(t, client.SignOut(context.Background(), ""))
		assert.Zero(t, recorded.count())
	})

	t.Run("rejected sign-out keeps the token", func(t *testing.T) {
		t.Parallel()

		exception := map[string]interface{}{
			"isException":   true,
			"responseCode":  401,
			"description":   "Invalid token",
			"correlationId": "c-1",
		}

		tests := []struct {
			name   string
			status int
		}{
			{name: "unauthorized", status: http.StatusUnauthorized},
			{name: "server error", status: http.StatusInternalServerError},
			{name: "exception body with 200", status: http.StatusOK},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				server, recorded := newJSONServer(t, tt.status, exception)

				logger := &recordingLogger{}
				cfg := newTestConfig(mpx.EndpointAuthentication, server.URL)
				cfg.Logger = logger

				client := NewAuthenticationClient(cfg)
				client.token = "held"

				assert.False(t, client.SignOut(context.Background(), ""))
				assert.Equal(t, "held", client.Token())
				assert.Equal(t, 1, recorded.count())
				assert.Contains(t, logger.levels(), mpx.LevelWarning)
			})
		}
	})

	t.Run("failure is logged", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, "<html>")

		logger := &recordingLogger{}
		cfg := newTestConfig(mpx.EndpointAuthentication, server.URL)
		cfg.Logger = logger

		client := NewAuthenticationClient(cfg)

		assert.False(t, client.SignOut(context.Background(), "tok"))
		assert.Contains(t, logger.levels(), mpx.LevelWarning)
	})
}

func TestAuthenticationClient_Close(t *testing.T) {
	t.Parallel()

	var signOuts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/signOut" {
			signOuts.Add(1)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"signInResponse": map[string]interface{}{"token": "tok-123"},
		})
	}))
	defer server.Close()

	client := NewAuthenticationClient(newTestConfig(mpx.EndpointAuthentication, server.URL))

	require.NoError(t, client.Close())
	assert.Equal(t, int32(0), signOuts.Load())

	ok, err := client.SignIn(context.Background(), "user", "pass")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, client.Close())
	assert.Equal(t, int32(1), signOuts.Load())
	assert.Empty(t, client.Token())
}
