package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// newTestConfig returns the defaults of endpoint pointed at serverURL with
// retries disabled and a short timeout.
func newTestConfig(endpoint mpx.Endpoint, serverURL string) mpx.Config {
	cfg := mpx.DefaultConfig(endpoint)
	cfg.BaseURL = serverURL
	cfg.HTTPTimeout = 5 * time.Second

	return cfg
}

// RecordedRequest captures what a test server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// requestRecorder keeps every request a test server received.
type requestRecorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
}

func (r *requestRecorder) add(req RecordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
}

func (r *requestRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

// last returns the most recent request.
func (r *requestRecorder) last(t *testing.T) RecordedRequest {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotEmpty(t, r.requests)

	return r.requests[len(r.requests)-1]
}

// newJSONServer starts a server answering every request with status and
// payload. A string payload is written verbatim, anything else JSON encoded.
func newJSONServer(t *testing.T, status int, payload interface{}) (*httptest.Server, *requestRecorder) {
	t.Helper()

	recorder := &requestRecorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		recorder.add(RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		switch p := payload.(type) {
		case string:
			_, _ = w.Write([]byte(p))
		default:
			assert.NoError(t, json.NewEncoder(w).Encode(p))
		}
	}))
	t.Cleanup(server.Close)

	return server, recorder
}

type loggedEntry struct {
	Level  mpx.Level
	Msg    string
	Fields map[string]interface{}
}

// recordingLogger keeps every entry it receives.
type recordingLogger struct {
	mu      sync.Mutex
	entries []loggedEntry
}

func (l *recordingLogger) record(level mpx.Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, loggedEntry{Level: level, Msg: msg, Fields: fields})
}

func (l *recordingLogger) levels() []mpx.Level {
	l.mu.Lock()
	defer l.mu.Unlock()

	levels := make([]mpx.Level, 0, len(l.entries))
	for _, e := range l.entries {
		levels = append(levels, e.Level)
	}

	return levels
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		msgs = append(msgs, e.Msg)
	}

	return msgs
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelDebug, msg, fields)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelInfo, msg, fields)
}

func (l *recordingLogger) Notice(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelNotice, msg, fields)
}

func (l *recordingLogger) Warning(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelWarning, msg, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelError, msg, fields)
}

func (l *recordingLogger) Critical(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelCritical, msg, fields)
}

func (l *recordingLogger) Emergency(msg string, fields map[string]interface{}) {
	l.record(mpx.LevelEmergency, msg, fields)
}
