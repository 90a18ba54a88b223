package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
)

// NewRootCommand creates the mpx command tree with its global flags bound to
// viper.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mpx",
		Short: "thePlatform MPX CLI",
		Long: `A command-line interface for the thePlatform MPX web services.

It signs in to the identity service, queries public media feeds, lists feed
configurations and media request counts, and updates media records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.mpx/config.yml)")
	flags.StringP("user", "u", "", "MPX user name")
	flags.String("token", "", "MPX token (skips sign-in)")
	flags.String("account", "", "MPX account URI for data services")
	flags.String("account-pid", "", "account PID of the public feed")
	flags.String("feed-pid", "", "feed PID of the public feed")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.Int("retries", 0, "retry transport failures and 5xx responses this many times")
	flags.Bool("debug", false, "log every HTTP response")
	flags.BoolP("verbose", "v", false, "verbose output")

	for _, name := range []string{
		"config", "user", "token", "account", "account-pid", "feed-pid",
		"output", "log-level", "log-format", "retries", "debug", "verbose",
	} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewAuthCommand())
	rootCmd.AddCommand(NewFeedCommand())
	rootCmd.AddCommand(NewFeedConfigCommand())
	rootCmd.AddCommand(NewRequestsCommand())
	rootCmd.AddCommand(NewMediaCommand())
	rootCmd.AddCommand(NewUtilCommand())

	return rootCmd
}

// BindEnv makes every setting readable from MPX_* environment variables,
// e.g. MPX_PASSWORD or MPX_ENDPOINTS_MEDIA_FEED.
func BindEnv() {
	viper.SetEnvPrefix("MPX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(keyPassword)
}
