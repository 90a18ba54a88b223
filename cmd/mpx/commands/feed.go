package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

const defaultPageSize = 100

// feedFlags are shared by the feed subcommands that query entries.
type feedFlags struct {
	start    int
	count    int
	fields   []string
	since    string
	filters  map[string]string
	all      bool
	pageSize int
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.start, "start", 0, "1-based index of the first entry")
	cmd.Flags().IntVar(&f.count, "count", 0, "number of entries (0 for all)")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&f.since, "since", "", "only entries updated at or after this RFC 3339 time")
	cmd.Flags().StringToStringVar(&f.filters, "filter", nil, "extra query filters (key=value)")
}

func (f *feedFlags) query() (mpx.FeedQuery, error) {
	since, err := parseSince(f.since)
	if err != nil {
		return mpx.FeedQuery{}, err
	}

	return mpx.FeedQuery{
		Start:   f.start,
		Count:   f.count,
		Fields:  f.fields,
		Since:   since,
		Filters: f.filters,
	}, nil
}

func parseSince(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	since, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value %q: %w", value, err)
	}

	return since, nil
}

func toValues(params map[string]string) url.Values {
	if len(params) == 0 {
		return nil
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	return values
}

// newFeedClient builds a media feed client from the configured PIDs.
func newFeedClient(cmd *cobra.Command) (mpx.MediaFeedClient, error) {
	accountPID, err := requireSetting(keyAccountPID, ErrAccountPIDRequired)
	if err != nil {
		return nil, err
	}

	feedPID, err := requireSetting(keyFeedPID, ErrFeedPIDRequired)
	if err != nil {
		return nil, err
	}

	return mpxclient.NewMediaFeedClient(accountPID, feedPID, clientOptions(cmd)...)
}

// NewFeedCommand creates the feed command group.
func NewFeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Query a public media feed",
		Long:  "Count and list entries of the media feed selected by --account-pid and --feed-pid",
	}

	cmd.AddCommand(newFeedCountCommand())
	cmd.AddCommand(newFeedEntriesCommand())
	cmd.AddCommand(newFeedEntryCommand())
	cmd.AddCommand(newFeedURLCommand())

	return cmd
}

func newFeedCountCommand() *cobra.Command {
	var (
		since  string
		params map[string]string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count feed entries",
		Long:  "Print the number of entries in the feed, optionally only those updated since a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFeedClient(cmd)
			if err != nil {
				return err
			}

			sinceTime, err := parseSince(since)
			if err != nil {
				return err
			}

			count, err := client.GetCountSince(cmd.Context(), sinceTime, toValues(params))
			if err != nil {
				return fmt.Errorf("failed to count entries: %w", err)
			}

			done, err := printStructured(cmd.OutOrStdout(), map[string]int{"count": count})
			if done {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), count)

			return err
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only entries updated at or after this RFC 3339 time")
	cmd.Flags().StringToStringVar(&params, "param", nil, "extra query parameters (key=value)")

	return cmd
}

func newFeedEntriesCommand() *cobra.Command {
	flags := &feedFlags{}

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List feed entries",
		Long:  "List a window of feed entries, or every entry page by page with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFeedClient(cmd)
			if err != nil {
				return err
			}

			query, err := flags.query()
			if err != nil {
				return err
			}

			var entries []mpx.FeedEntry
			if flags.all {
				entries, err = fetchAllEntries(cmd, client, query, flags.pageSize)
			} else {
				entries, err = client.GetEntries(cmd.Context(), query)
			}

			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}

			done, err := printStructured(cmd.OutOrStdout(), entries)
			if done {
				return err
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No entries found")

				return nil
			}

			return renderEntries(cmd.OutOrStdout(), entries)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.all, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", defaultPageSize, "entries per page with --all")

	return cmd
}

// fetchAllEntries pages through the feed until a short page is returned.
func fetchAllEntries(cmd *cobra.Command, client mpx.MediaFeedClient, query mpx.FeedQuery, pageSize int) ([]mpx.FeedEntry, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	query.Count = pageSize
	if query.Start < 1 {
		query.Start = 1
	}

	var all []mpx.FeedEntry

	for {
		page, err := client.GetEntries(cmd.Context(), query)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}

		query.Start += pageSize
	}
}

func newFeedEntryCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "entry ID",
		Short: "Show one feed entry",
		Long:  "Display the feed entry with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFeedClient(cmd)
			if err != nil {
				return err
			}

			entry, err := client.GetSingleEntry(cmd.Context(), args[0], fields)
			if err != nil {
				return fmt.Errorf("failed to get entry: %w", err)
			}

			if entry == nil {
				return fmt.Errorf("%w: %s", ErrEntryNotFound, args[0])
			}

			done, err := printStructured(cmd.OutOrStdout(), entry)
			if done {
				return err
			}

			return renderEntries(cmd.OutOrStdout(), []mpx.FeedEntry{entry})
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return")

	return cmd
}

func newFeedURLCommand() *cobra.Command {
	var (
		flags     = &feedFlags{}
		id        string
		countOnly bool
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the URL a feed query would request",
		Long:  "Print the feed URL for an entries query, a count (--count-only) or a single entry (--id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFeedClient(cmd)
			if err != nil {
				return err
			}

			var target string

			switch {
			case id != "":
				target = client.BuildURLGetSingleEntry(id, flags.fields)
			case countOnly:
				since, err := parseSince(flags.since)
				if err != nil {
					return err
				}

				target = client.BuildURLGetCountSince(since, toValues(flags.filters))
			default:
				query, err := flags.query()
				if err != nil {
					return err
				}

				target, err = client.BuildURLGetEntries(query)
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), target)

			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "build the URL of a single entry")
	cmd.Flags().BoolVar(&countOnly, "count-only", false, "build the URL of a count query")

	return cmd
}
