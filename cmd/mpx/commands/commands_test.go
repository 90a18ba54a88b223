package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

func TestNewRootCommand(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd := NewRootCommand("dev", "none", "unknown")
	assert.Equal(t, "mpx", cmd.Use)

	for _, name := range []string{"version", "config", "auth", "feed", "feed-config", "requests", "media", "util"} {
		assert.NotNil(t, findSubcommand(cmd, name), "command %s should exist", name)
	}

	for _, flag := range []string{"user", "token", "account", "account-pid", "feed-pid", "output", "log-level", "retries"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %s should exist", flag)
	}
}

func TestFeedCommandStructure(t *testing.T) {
	cmd := NewFeedCommand()
	assert.Equal(t, "feed", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"count", "entries", "entry", "url"}, names)

	entries := findSubcommand(cmd, "entries")
	require.NotNil(t, entries)

	for _, flag := range []string{"start", "count", "fields", "since", "filter", "all", "page-size"} {
		assert.NotNil(t, entries.Flags().Lookup(flag), "flag %s should exist", flag)
	}

	entry := findSubcommand(cmd, "entry")
	require.NotNil(t, entry)
	assert.Equal(t, "entry ID", entry.Use)
	assert.NotNil(t, entry.Args)
}

func TestAuthCommandStructure(t *testing.T) {
	cmd := NewAuthCommand()

	signIn := findSubcommand(cmd, "sign-in")
	require.NotNil(t, signIn)

	save := signIn.Flags().Lookup("save")
	require.NotNil(t, save)
	assert.Equal(t, "false", save.DefValue)

	assert.NotNil(t, findSubcommand(cmd, "sign-out"))
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, map[string]interface{}{"output": "json"}, "version")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Built: "2024-01-01", ClientVersion: "4.0.0"}, info)

	out, err = executeCommand(t, map[string]interface{}{"output": "yaml"}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1.2.3")

	out, err = executeCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
}

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acct/feed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		query := r.URL.Query()

		switch {
		case query.Get("count") == "true":
			_, _ = w.Write([]byte(`{"totalResults": 3}`))
		case query.Get("byId") == "missing":
			_, _ = w.Write([]byte(`{"entries": []}`))
		case query.Get("range") == "4-5":
			_, _ = w.Write([]byte(`{"entries": [{"id": "4"}]}`))
		default:
			_, _ = w.Write([]byte(`{"entries": [{"id": "1", "title": "One"}, {"id": "2", "title": "Two"}]}`))
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func feedSettings(serverURL string) map[string]interface{} {
	return map[string]interface{}{
		"account_pid":          "acct",
		"feed_pid":             "feed",
		"endpoints.media-feed": serverURL,
	}
}

func TestFeedCountCommand(t *testing.T) {
	server := newFeedServer(t)

	out, err := executeCommand(t, feedSettings(server.URL), "feed", "count")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, err = executeCommand(t, feedSettings(server.URL), "feed", "count", "--since", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --since value")
}

func TestFeedCommandsRequirePIDs(t *testing.T) {
	_, err := executeCommand(t, map[string]interface{}{"feed_pid": "feed"}, "feed", "count")
	require.ErrorIs(t, err, ErrAccountPIDRequired)

	_, err = executeCommand(t, map[string]interface{}{"account_pid": "acct"}, "feed", "count")
	require.ErrorIs(t, err, ErrFeedPIDRequired)
}

func TestFeedEntriesCommand(t *testing.T) {
	server := newFeedServer(t)

	settings := feedSettings(server.URL)
	settings["output"] = "json"

	out, err := executeCommand(t, settings, "feed", "entries", "--start", "1", "--count", "2")
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, "One", entries[0]["title"])

	out, err = executeCommand(t, feedSettings(server.URL), "feed", "entries")
	require.NoError(t, err)
	assert.Contains(t, out, "One")
	assert.Contains(t, out, "Two")
}

func TestFeedEntriesCommand_All(t *testing.T) {
	server := newFeedServer(t)

	settings := feedSettings(server.URL)
	settings["output"] = "json"

	out, err := executeCommand(t, settings, "feed", "entries", "--all", "--page-size", "2", "--start", "2")
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 3)
	assert.Equal(t, "4", entries[2]["id"])
}

func TestFeedEntryCommand(t *testing.T) {
	server := newFeedServer(t)

	_, err := executeCommand(t, feedSettings(server.URL), "feed", "entry", "missing")
	require.ErrorIs(t, err, ErrEntryNotFound)

	settings := feedSettings(server.URL)
	settings["output"] = "yaml"

	out, err := executeCommand(t, settings, "feed", "entry", "1")
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "One", entry["title"])
}

func TestFeedURLCommand(t *testing.T) {
	settings := map[string]interface{}{
		"account_pid":          "acct",
		"feed_pid":             "feed",
		"endpoints.media-feed": "http://feed.example.com/f",
	}

	out, err := executeCommand(t, settings, "feed", "url", "--start", "11", "--count", "10", "--fields", "id,title")
	require.NoError(t, err)
	assert.Equal(t, "http://feed.example.com/f/acct/feed?fields=id%2Ctitle&form=json&range=11-20&schema=2.0.0\n", out)

	out, err = executeCommand(t, settings, "feed", "url", "--id", "42")
	require.NoError(t, err)
	assert.Equal(t, "http://feed.example.com/f/acct/feed?byId=42&form=json&schema=2.0.0\n", out)

	out, err = executeCommand(t, settings, "feed", "url", "--count-only")
	require.NoError(t, err)
	assert.Equal(t, "http://feed.example.com/f/acct/feed?count=true&entries=false&form=json&schema=2.0.0\n", out)

	_, err = executeCommand(t, settings, "feed", "url", "--count=-1")
	require.Error(t, err)
	assert.True(t, mpx.IsValidation(err))
}

func TestRequestsCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "saved-token", r.URL.Query().Get("token"))
		assert.Equal(t, "acct-uri", r.URL.Query().Get("account"))
		assert.Equal(t, "1-5", r.URL.Query().Get("range"))

		_, _ = w.Write([]byte(`{"entries": [
			{"plrequest$mediaId": "http://data.media.theplatform.com/media/data/Media/77", "plrequest$requestCount": 12}
		]}`))
	}))
	defer server.Close()

	settings := map[string]interface{}{
		"token":                   "saved-token",
		"account":                 "acct-uri",
		"endpoints.media-request": server.URL,
		"output":                  "json",
	}

	out, err := executeCommand(t, settings, "requests", "--range", "1-5")
	require.NoError(t, err)

	var entries []mpx.MediaRequestEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []mpx.MediaRequestEntry{{MediaID: "77", RequestCount: 12}}, entries)

	_, err = executeCommand(t, map[string]interface{}{"token": "t"}, "requests")
	require.ErrorIs(t, err, ErrAccountRequired)
}

func TestMediaPutCommand(t *testing.T) {
	var status string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("httpError"))
		assert.Equal(t, "saved-token", r.URL.Query().Get("token"))

		_, _ = w.Write([]byte(status))
	}))
	defer server.Close()

	file := filepath.Join(t.TempDir(), "media.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"entries": [{"id": "http://data.media.theplatform.com/media/data/Media/1", "title": "x"}]}`), 0o600))

	settings := map[string]interface{}{
		"token":           "saved-token",
		"endpoints.media": server.URL,
		"output":          "json",
	}

	status = `{"entries": []}`

	out, err := executeCommand(t, settings, "media", "put", file)
	require.NoError(t, err)

	var result UpdateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)

	status = `{"isException": true, "description": "Access denied", "correlationId": "c-1"}`

	_, err = executeCommand(t, settings, "media", "put", file)
	require.ErrorIs(t, err, ErrUpdateFailed)
	assert.Contains(t, err.Error(), "Message: Access denied. Correlation: c-1")

	_, err = executeCommand(t, settings, "media", "put", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestUtilCommands(t *testing.T) {
	out, err := executeCommand(t, nil, "util", "extract-id", "http://data.media.theplatform.com/media/data/Media/358543427929")
	require.NoError(t, err)
	assert.Equal(t, "358543427929\n", out)

	out, err = executeCommand(t, nil, "util", "media-uri", "42")
	require.NoError(t, err)
	assert.Equal(t, "http://data.media.theplatform.com/media/data/Media/42\n", out)

	_, err = executeCommand(t, nil, "util", "media-uri", "abc")
	require.ErrorIs(t, err, mpx.ErrInvalidMediaID)

	out, err = executeCommand(t, nil, "util", "custom-value", "k2=v2", "k1=v1")
	require.NoError(t, err)
	assert.Equal(t, "{k1}{v1},{k2}{v2}\n", out)

	_, err = executeCommand(t, nil, "util", "custom-value", "novalue")
	require.ErrorIs(t, err, ErrInvalidPair)
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, c *Config)
		wantErr error
	}{
		{name: "user", key: "user", value: "alice", check: func(t *testing.T, c *Config) { assert.Equal(t, "alice", c.User) }},
		{name: "retries", key: "retries", value: "3", check: func(t *testing.T, c *Config) { assert.Equal(t, 3, c.Retries) }},
		{name: "clear retries", key: "retries", value: "", check: func(t *testing.T, c *Config) { assert.Zero(t, c.Retries) }},
		{
			name: "endpoint", key: "endpoints.media", value: "http://m",
			check: func(t *testing.T, c *Config) { assert.Equal(t, "http://m", c.Endpoints["media"]) },
		},
		{name: "unknown endpoint", key: "endpoints.nope", value: "x", wantErr: ErrUnknownConfigKey},
		{name: "unknown key", key: "color", value: "x", wantErr: ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Retries: 5}

			err := applySetting(config, tt.key, tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestConfigSetAndShow(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("output: table\n"), 0o600))

	t.Cleanup(viper.Reset)

	run := func(args ...string) string {
		viper.Reset()

		root := NewRootCommand("dev", "none", "unknown")
		viper.SetConfigFile(configFile)
		require.NoError(t, viper.ReadInConfig())

		out := &strings.Builder{}
		root.SetOut(out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())

		return out.String()
	}

	assert.Equal(t, "Set account_pid\n", run("config", "set", "account_pid", "acct"))
	run("config", "set", "token", "secret-token")

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "account_pid: acct")
	assert.Contains(t, string(data), "token: secret-token")

	shown := run("config", "show", "--output", "json")
	assert.Contains(t, shown, `"account_pid": "acct"`)
	assert.Contains(t, shown, `"token": "***"`)
	assert.NotContains(t, shown, "secret-token")

	run("config", "unset", "token")

	data, err = os.ReadFile(configFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "abcd***", maskToken("abcdefgh"))
}
