package commands

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/internal/publish"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

// NewRequestsCommand creates the requests command.
func NewRequestsCommand() *cobra.Command {
	var (
		rangeParam string
		params     map[string]string
		natsURL    string
		subject    string
	)

	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"media-requests"},
		Short:   "Show media request counts",
		Long: `Show how often each media of --account was requested.

With --publish the counts are also sent to NATS, one JSON message per media.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := requireSetting(keyAccount, ErrAccountRequired)
			if err != nil {
				return err
			}

			options := url.Values{constants.QueryAccount: []string{account}}
			if rangeParam != "" {
				options.Set(constants.QueryRange, rangeParam)
			}

			for k, v := range params {
				options.Set(k, v)
			}

			var entries []mpx.MediaRequestEntry

			err = withToken(cmd, func(token string, opts []mpxclient.Option) error {
				client, err := mpxclient.NewMediaRequestClient(token, opts...)
				if err != nil {
					return err
				}

				entries, err = client.GetEntries(cmd.Context(), options)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to get media requests: %w", err)
			}

			if natsURL != "" {
				err = publishRequests(cmd, natsURL, subject, account, entries)
				if err != nil {
					return err
				}
			}

			done, err := printStructured(cmd.OutOrStdout(), entries)
			if done {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.MediaID, strconv.Itoa(entry.RequestCount)})
			}

			return renderTable(cmd.OutOrStdout(), []string{"Media ID", "Requests"}, rows)
		},
	}

	cmd.Flags().StringVar(&rangeParam, "range", "", "entry range, default 1-2000")
	cmd.Flags().StringToStringVar(&params, "param", nil, "extra query parameters (key=value)")
	cmd.Flags().StringVar(&natsURL, "publish", "", "NATS URL to publish the counts to")
	cmd.Flags().StringVar(&subject, "subject", constants.DefaultNATSSubject, "NATS subject")

	return cmd
}

func publishRequests(cmd *cobra.Command, natsURL, subject, account string, entries []mpx.MediaRequestEntry) error {
	logger := NewLogger(cmd.ErrOrStderr())

	publisher, err := publish.Connect(natsURL, subject, mpx.NewZerologLogger(logger))
	if err != nil {
		return err
	}

	defer func() {
		err := publisher.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to close NATS connection")
		}
	}()

	sent, err := publisher.Publish(cmd.Context(), account, entries)
	if err != nil {
		return fmt.Errorf("published %d of %d media requests: %w", sent, len(entries), err)
	}

	return nil
}
