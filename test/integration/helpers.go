//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	User       string
	Password   string
	Account    string
	AccountPID string
	FeedPID    string
	MPXPath    string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		User:       os.Getenv("MPX_USER"),
		Password:   os.Getenv("MPX_PASSWORD"),
		Account:    os.Getenv("MPX_ACCOUNT"),
		AccountPID: os.Getenv("MPX_ACCOUNT_PID"),
		FeedPID:    os.Getenv("MPX_FEED_PID"),
		MPXPath:    getMPXPath(),
		Verbose:    os.Getenv("MPX_VERBOSE") == "true",
	}
}

// getMPXPath determines the path to the mpx binary
func getMPXPath() string {
	if path := os.Getenv("MPX_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../mpx", "./mpx", "../mpx"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "mpx"
}

// SkipIfMissingCredentials skips tests that need a real MPX user.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.User == "" || config.Password == "" {
		t.Skip("MPX_USER or MPX_PASSWORD not set, skipping integration test")
	}
}

// SkipIfMissingFeed skips tests that need a public feed.
func (config *TestConfig) SkipIfMissingFeed(t *testing.T) {
	t.Helper()

	if config.AccountPID == "" || config.FeedPID == "" {
		t.Skip("MPX_ACCOUNT_PID or MPX_FEED_PID not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips tests that drive the CLI.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.MPXPath); err != nil {
		t.Skipf("mpx binary not found at %s, skipping integration test", config.MPXPath)
	}
}

// CommandRunner runs the mpx binary with the test credentials in its
// environment.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes an mpx command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.MPXPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Env = append(os.Environ(), "HOME="+runner.t.TempDir())

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.MPXPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output looks like JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}
