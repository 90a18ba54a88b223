package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

// Common static errors used throughout the commands package.
var (
	ErrUserRequired       = errors.New("user is required (use --user or MPX_USER)")
	ErrAccountRequired    = errors.New("account is required (use --account or MPX_ACCOUNT)")
	ErrAccountPIDRequired = errors.New("account PID is required (use --account-pid or MPX_ACCOUNT_PID)")
	ErrFeedPIDRequired    = errors.New("feed PID is required (use --feed-pid or MPX_FEED_PID)")
	ErrTokenRequired      = errors.New("token is required (run 'mpx auth sign-in --save' or use --token)")
	ErrUpdateFailed       = errors.New("media update failed")
	ErrSignOutFailed      = errors.New("sign-out failed")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrInvalidPair        = errors.New("expected KEY=VALUE")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
)

// Configuration keys shared by flags, environment and the config file.
const (
	keyUser       = "user"
	keyPassword   = "password"
	keyToken      = "token"
	keyAccount    = "account"
	keyAccountPID = "account_pid"
	keyFeedPID    = "feed_pid"
	keyOutput     = "output"
	keyLogLevel   = "log_level"
	keyLogFormat  = "log_format"
	keyRetries    = "retries"
	keyDebug      = "debug"
	keyEndpoints  = "endpoints"
)

const defaultJSONIndent = 2

// NewLogger builds the CLI logger from the log_level and log_format settings.
func NewLogger(out io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel

	switch strings.ToLower(viper.GetString(keyLogLevel)) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if viper.GetString(keyLogFormat) == constants.FormatJSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// clientOptions translates CLI settings into client options.
func clientOptions(cmd *cobra.Command) []mpxclient.Option {
	logger := NewLogger(cmd.ErrOrStderr())

	opts := []mpxclient.Option{
		mpxclient.WithLogger(mpx.NewZerologLogger(logger)),
		mpxclient.WithUserAgent("mpx-cli"),
		mpxclient.WithDebug(viper.GetBool(keyDebug)),
	}

	if retries := viper.GetInt(keyRetries); retries > 0 {
		opts = append(opts, mpxclient.WithRetry(retries, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax))
	}

	for _, endpoint := range mpx.Endpoints() {
		if baseURL := viper.GetString(keyEndpoints + "." + string(endpoint)); baseURL != "" {
			opts = append(opts, mpxclient.WithEndpointBaseURL(endpoint, baseURL))
		}
	}

	return opts
}

// requireSetting returns the named setting or err when it is empty.
func requireSetting(key string, err error) (string, error) {
	value := viper.GetString(key)
	if value == "" {
		return "", err
	}

	return value, nil
}

// readPassword returns the configured password or prompts for it.
func readPassword(cmd *cobra.Command) (string, error) {
	if password := viper.GetString(keyPassword); password != "" {
		return password, nil
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	return string(bytePassword), nil
}

// credentials resolves the user and password for a sign-in.
func credentials(cmd *cobra.Command) (string, string, error) {
	user, err := requireSetting(keyUser, ErrUserRequired)
	if err != nil {
		return "", "", err
	}

	password, err := readPassword(cmd)
	if err != nil {
		return "", "", err
	}

	return user, password, nil
}

// printStructured writes data as JSON or YAML. It reports false for table
// output, which every command renders itself.
func printStructured(w io.Writer, data interface{}) (bool, error) {
	switch viper.GetString(keyOutput) {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return true, encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		err := encoder.Encode(data)
		if err != nil {
			return true, fmt.Errorf("failed to encode yaml: %w", err)
		}

		return true, encoder.Close()
	default:
		return false, nil
	}
}

// renderTable writes a table with the given header and rows.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(cells(header)...)

	for _, row := range rows {
		_ = table.Append(cells(row)...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderEntries writes feed entries as a table, one column per field in
// sorted order. Nested values are rendered as JSON.
func renderEntries(w io.Writer, entries []mpx.FeedEntry) error {
	fieldSet := map[string]struct{}{}

	for _, entry := range entries {
		for field := range entry {
			fieldSet[field] = struct{}{}
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for field := range fieldSet {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	caser := cases.Title(language.English)
	header := make([]string, 0, len(fields))

	for _, field := range fields {
		header = append(header, caser.String(field))
	}

	rows := make([][]string, 0, len(entries))

	for _, entry := range entries {
		row := make([]string, 0, len(fields))
		for _, field := range fields {
			row = append(row, formatCell(entry[field], field == keyPassword))
		}

		rows = append(rows, row)
	}

	return renderTable(w, header, rows)
}

func cells(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}

	return out
}

func formatCell(value interface{}, secret bool) string {
	if secret {
		return constants.MaskedSecret
	}

	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return constants.BooleanTrue
		}

		return constants.BooleanFalse
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	}
}
