//go:build integration

package integration

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	return ctx
}

func TestSignInAndOut(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	ctx := testContext(t)

	auth, err := mpxclient.NewAuthenticationClient()
	require.NoError(t, err)

	ok, err := auth.SignIn(ctx, config.User, config.Password)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, auth.Token())

	assert.True(t, auth.SignOut(ctx, ""))
	assert.Empty(t, auth.Token())
}

func TestSignIn_WrongPassword(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	auth, err := mpxclient.NewAuthenticationClient()
	require.NoError(t, err)

	ok, err := auth.SignIn(testContext(t), config.User, config.Password+"-wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, auth.Token())
}

func TestMediaFeed(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingFeed(t)

	ctx := testContext(t)

	feed, err := mpxclient.NewMediaFeedClient(config.AccountPID, config.FeedPID)
	require.NoError(t, err)

	count, err := feed.GetCount(ctx, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 0)

	entries, err := feed.GetEntries(ctx, mpx.FeedQuery{Start: 1, Count: 5, Fields: []string{"id", "title"}})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), 5)

	if len(entries) == 0 {
		return
	}

	id, ok := entries[0]["id"].(string)
	require.True(t, ok, "entry id should be a string")

	entry, err := feed.GetSingleEntry(ctx, id, nil)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, id, entry["id"])
}

func TestSessionDataServices(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingCredentials(t)

	if config.Account == "" {
		t.Skip("MPX_ACCOUNT not set, skipping integration test")
	}

	err := mpxclient.WithSession(testContext(t), config.User, config.Password, func(ctx context.Context, session *mpxclient.Session) error {
		feedConfigs, err := session.FeedConfigClient()
		if err != nil {
			return err
		}

		_, err = feedConfigs.GetEntries(ctx, config.Account, mpx.FeedConfigOptions{Fields: []string{"id", "pid"}})
		if err != nil {
			return err
		}

		requests, err := session.MediaRequestClient()
		if err != nil {
			return err
		}

		entries, err := requests.GetEntries(ctx, map[string][]string{"account": {config.Account}, "range": {"1-10"}})
		if err != nil {
			return err
		}

		for _, entry := range entries {
			assert.NotEmpty(t, entry.MediaID)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestCLIFeedCount(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingFeed(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("feed", "count", "--account-pid", config.AccountPID, "--feed-pid", config.FeedPID)
	require.NoError(t, err, "feed count failed: %s", stderr)

	count, err := strconv.Atoi(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 0)

	stdout, stderr, err = runner.Run("feed", "entries", "--account-pid", config.AccountPID,
		"--feed-pid", config.FeedPID, "--count", "3", "--output", "json")
	require.NoError(t, err, "feed entries failed: %s", stderr)
	AssertJSONOutput(t, stdout)
}
