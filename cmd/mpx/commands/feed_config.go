package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

// NewFeedConfigCommand creates the feed-config command group.
func NewFeedConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "feed-config",
		Aliases: []string{"feed-configs", "fc"},
		Short:   "Inspect feed configurations",
		Long:    "List the FeedConfig objects of an account",
	}

	cmd.AddCommand(newFeedConfigListCommand())

	return cmd
}

func newFeedConfigListCommand() *cobra.Command {
	var (
		fields      []string
		filterField string
		filterValue string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feed configurations",
		Long:  "List the FeedConfig objects of --account using the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := requireSetting(keyAccount, ErrAccountRequired)
			if err != nil {
				return err
			}

			options := mpx.FeedConfigOptions{Fields: fields}
			if filterField != "" {
				options.Filter = &mpx.FieldFilter{Field: filterField, Value: filterValue}
			}

			var entries []mpx.FeedEntry

			err = withToken(cmd, func(token string, opts []mpxclient.Option) error {
				client, err := mpxclient.NewFeedConfigClient(token, opts...)
				if err != nil {
					return err
				}

				entries, err = client.GetEntries(cmd.Context(), account, options)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to list feed configs: %w", err)
			}

			done, err := printStructured(cmd.OutOrStdout(), entries)
			if done {
				return err
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No feed configs found")

				return nil
			}

			return renderEntries(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", []string{"id", "pid", "title"}, "fields to return")
	cmd.Flags().StringVar(&filterField, "filter-field", "", "filter field, e.g. byTitle")
	cmd.Flags().StringVar(&filterValue, "filter-value", "", "filter value")

	return cmd
}

// withToken runs fn with the saved token, or inside a fresh session when no
// token is saved. The session is signed out before withToken returns.
func withToken(cmd *cobra.Command, fn func(token string, opts []mpxclient.Option) error) error {
	opts := clientOptions(cmd)

	if token := viper.GetString(keyToken); token != "" {
		return fn(token, opts)
	}

	user, password, err := credentials(cmd)
	if err != nil {
		return err
	}

	return mpxclient.WithSession(cmd.Context(), user, password, func(_ context.Context, s *mpxclient.Session) error {
		return fn(s.Token(), opts)
	}, opts...)
}
