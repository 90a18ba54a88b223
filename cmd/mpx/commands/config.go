package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// Config represents the CLI configuration file. The password is never stored.
type Config struct {
	User       string            `json:"user,omitempty"        yaml:"user,omitempty"`
	Token      string            `json:"token,omitempty"       yaml:"token,omitempty"`
	Account    string            `json:"account,omitempty"     yaml:"account,omitempty"`
	AccountPID string            `json:"account_pid,omitempty" yaml:"account_pid,omitempty"`
	FeedPID    string            `json:"feed_pid,omitempty"    yaml:"feed_pid,omitempty"`
	Output     string            `json:"output"                yaml:"output"`
	LogLevel   string            `json:"log_level,omitempty"   yaml:"log_level,omitempty"`
	LogFormat  string            `json:"log_format,omitempty"  yaml:"log_format,omitempty"`
	Retries    int               `json:"retries,omitempty"     yaml:"retries,omitempty"`
	Endpoints  map[string]string `json:"endpoints,omitempty"   yaml:"endpoints,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage MPX CLI configuration stored in ~/.mpx/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			done, err := printStructured(cmd.OutOrStdout(), config)
			if done {
				return err
			}

			return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, configRows(config))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: user, token, account, account_pid,
feed_pid, output, log_level, log_format, retries, endpoints.<endpoint>`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := applySetting(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Long:  "Remove a configuration value so the default applies again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := applySetting(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// applySetting stores value under key; an empty value clears it.
func applySetting(config *Config, key, value string) error {
	if endpoint, ok := strings.CutPrefix(key, keyEndpoints+"."); ok {
		if !isKnownEndpoint(endpoint) {
			return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
		}

		if config.Endpoints == nil {
			config.Endpoints = map[string]string{}
		}

		if value == "" {
			delete(config.Endpoints, endpoint)
		} else {
			config.Endpoints[endpoint] = value
		}

		return nil
	}

	switch key {
	case keyUser:
		config.User = value
	case keyToken:
		config.Token = value
	case keyAccount:
		config.Account = value
	case keyAccountPID:
		config.AccountPID = value
	case keyFeedPID:
		config.FeedPID = value
	case keyOutput:
		config.Output = value
	case keyLogLevel:
		config.LogLevel = value
	case keyLogFormat:
		config.LogFormat = value
	case keyRetries:
		if value == "" {
			config.Retries = 0

			return nil
		}

		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value %q: %w", value, err)
		}

		config.Retries = retries
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

func isKnownEndpoint(name string) bool {
	return slices.Contains(mpx.Endpoints(), mpx.Endpoint(name))
}

func configRows(config *Config) [][]string {
	rows := [][]string{
		{"User", valueOrNA(config.User)},
		{"Token", valueOrNA(config.Token)},
		{"Account", valueOrNA(config.Account)},
		{"Account PID", valueOrNA(config.AccountPID)},
		{"Feed PID", valueOrNA(config.FeedPID)},
		{"Output", valueOrNA(config.Output)},
		{"Log Level", valueOrNA(config.LogLevel)},
		{"Log Format", valueOrNA(config.LogFormat)},
		{"Retries", strconv.Itoa(config.Retries)},
	}

	names := make([]string, 0, len(config.Endpoints))
	for name := range config.Endpoints {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		rows = append(rows, []string{"Endpoint " + name, config.Endpoints[name]})
	}

	return rows
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func loadConfig() *Config {
	return &Config{
		User:       viper.GetString(keyUser),
		Token:      viper.GetString(keyToken),
		Account:    viper.GetString(keyAccount),
		AccountPID: viper.GetString(keyAccountPID),
		FeedPID:    viper.GetString(keyFeedPID),
		Output:     viper.GetString(keyOutput),
		LogLevel:   viper.GetString(keyLogLevel),
		LogFormat:  viper.GetString(keyLogFormat),
		Retries:    viper.GetInt(keyRetries),
		Endpoints:  viper.GetStringMapString(keyEndpoints),
	}
}

// configFilePath returns the file in use, or ~/.mpx/config.yml.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".mpx", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set(keyUser, config.User)
	viper.Set(keyToken, config.Token)
	viper.Set(keyAccount, config.Account)
	viper.Set(keyAccountPID, config.AccountPID)
	viper.Set(keyFeedPID, config.FeedPID)
	viper.Set(keyOutput, config.Output)
	viper.Set(keyLogLevel, config.LogLevel)
	viper.Set(keyLogFormat, config.LogFormat)
	viper.Set(keyRetries, config.Retries)
	viper.Set(keyEndpoints, config.Endpoints)

	return nil
}
