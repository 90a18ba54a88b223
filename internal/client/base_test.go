package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

func TestBaseClient_Get(t *testing.T) {
	t.Parallel()

	exception := map[string]interface{}{
		"isException": true,
		"title":       "ObjectNotFoundException",
		"description": "Object not found",
	}

	t.Run("strict rejects non-200", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusNotFound, exception)

		base := NewBaseClient(newTestConfig(mpx.EndpointMediaFeed, server.URL))

		_, err := base.Get(context.Background(), "", nil, Params{})
		require.Error(t, err)
		assert.True(t, mpx.IsHTTPStatus(err))
		assert.True(t, mpx.IsRemoteException(err))
		assert.Contains(t, err.Error(), "HTTP status 404")
		assert.Contains(t, err.Error(), "Object not found")

		var statusErr *mpx.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		require.NotNil(t, statusErr.Exception)
		assert.Equal(t, "ObjectNotFoundException", statusErr.Exception.Title)
	})

	t.Run("strict non-200 without exception body", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusBadGateway, "<html>bad gateway</html>")

		base := NewBaseClient(newTestConfig(mpx.EndpointMediaFeed, server.URL))

		_, err := base.Get(context.Background(), "", nil, Params{Query: url.Values{"token": {"secret"}}})
		require.Error(t, err)
		assert.True(t, mpx.IsHTTPStatus(err))
		assert.False(t, mpx.IsRemoteException(err))
		assert.NotContains(t, err.Error(), "secret")
		assert.Contains(t, err.Error(), "token=***")
	})

	t.Run("entries holding non-objects are malformed", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, `{"entries": [{"id": "1"}, 42]}`)

		base := NewBaseClient(newTestConfig(mpx.EndpointMediaFeed, server.URL))

		_, err := base.Get(context.Background(), "", nil, Params{})
		require.ErrorIs(t, err, mpx.ErrMalformedResponse)
		require.ErrorIs(t, err, mpx.ErrEntryNotObject)
	})

	t.Run("strict returns exception envelope on 200", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusOK, exception)

		base := NewBaseClient(newTestConfig(mpx.EndpointMediaFeed, server.URL))

		envelope, err := base.Get(context.Background(), "", nil, Params{})
		require.NoError(t, err)
		assert.True(t, envelope.IsException())
	})

	t.Run("lenient reports exception", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusNotFound, exception)

		base := NewBaseClient(newTestConfig(mpx.EndpointMedia, server.URL))

		_, err := base.Get(context.Background(), "", nil, Params{})
		require.Error(t, err)
		assert.True(t, mpx.IsRemoteException(err))
		assert.Contains(t, err.Error(), "Object not found")
	})

	t.Run("lenient accepts non-200 body", func(t *testing.T) {
		t.Parallel()

		server, _ := newJSONServer(t, http.StatusAccepted, map[string]interface{}{"entries": []interface{}{}})

		base := NewBaseClient(newTestConfig(mpx.EndpointMedia, server.URL))

		envelope, err := base.Get(context.Background(), "", nil, Params{})
		require.NoError(t, err)
		assert.True(t, envelope.Has("entries"))
	})

	t.Run("headers and query", func(t *testing.T) {
		t.Parallel()

		server, recorded := newJSONServer(t, http.StatusOK, map[string]interface{}{})

		base := NewBaseClient(newTestConfig(mpx.EndpointFeedConfig, server.URL))

		_, err := base.Get(context.Background(), "FeedConfig", map[string]string{"X-Test": "1"}, Params{
			Query: url.Values{"schema": []string{"1.0"}},
		})
		require.NoError(t, err)

		req := recorded.last(t)
		assert.Equal(t, "/FeedConfig", req.Path)
		assert.Equal(t, "1", req.Header.Get("X-Test"))
		assert.Equal(t, "1.0", req.Query.Get("schema"))
		assert.Equal(t, "json", req.Query.Get("form"))
	})
}

func TestBaseClient_HTTPClient(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	cfg := newTestConfig(mpx.EndpointMediaFeed, "http://example.invalid/f")
	cfg.Logger = logger

	base := NewBaseClient(cfg)

	first := base.HTTPClient()
	second := base.HTTPClient()

	assert.Same(t, first, second)
	assert.Equal(t, "http://example.invalid/f", first.BaseURL())
	assert.Equal(t, []string{"Setting base url: http://example.invalid/f"}, logger.messages())
}

func TestBaseClient_ConfigIsCopied(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(mpx.EndpointMediaFeed, "http://example.invalid")
	base := NewBaseClient(cfg)

	cfg.Schema = "9.9.9"

	assert.Equal(t, "2.0.0", base.Config().Schema)
}

func TestBaseClient_Retry(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte(`{"totalResults":1}`))
	}))
	defer server.Close()

	cfg := newTestConfig(mpx.EndpointMediaFeed, server.URL)
	cfg.RetryMax = 3
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond

	base := NewBaseClient(cfg)

	envelope, err := base.Get(context.Background(), "", nil, Params{})
	require.NoError(t, err)

	total, ok := envelope.TotalResults()
	assert.True(t, ok)
	assert.Equal(t, 1, total)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestMergeQuery(t *testing.T) {
	t.Parallel()

	merged := mergeQuery(
		url.Values{"a": []string{"1"}, "b": []string{"1"}},
		nil,
		url.Values{"b": []string{"2"}, "c": []string{"3"}},
	)

	assert.Equal(t, url.Values{
		"a": []string{"1"},
		"b": []string{"2"},
		"c": []string{"3"},
	}, merged)
}
