package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// MediaFeedClient implements mpx.MediaFeedClient for one account and feed.
type MediaFeedClient struct {
	*BaseClient

	accountPID string
	feedPID    string
}

// NewMediaFeedClient creates a new media feed client.
func NewMediaFeedClient(config mpx.Config, accountPID, feedPID string) *MediaFeedClient {
	return &MediaFeedClient{
		BaseClient: newScopedBaseClient(config, mpx.FeedBaseURL(config.BaseURL, accountPID, feedPID)),
		accountPID: accountPID,
		feedPID:    feedPID,
	}
}

// AccountPID implements mpx.MediaFeedClient.AccountPID.
func (c *MediaFeedClient) AccountPID() string {
	return c.accountPID
}

// FeedPID implements mpx.MediaFeedClient.FeedPID.
func (c *MediaFeedClient) FeedPID() string {
	return c.feedPID
}

// GetCount implements mpx.MediaFeedClient.GetCount.
func (c *MediaFeedClient) GetCount(ctx context.Context, extra url.Values) (int, error) {
	params := countParams(extra)

	envelope, err := c.Get(ctx, "", nil, params)
	if err != nil {
		return 0, fmt.Errorf("getting feed count: %w", err)
	}

	count, ok := envelope.TotalResults()
	if !ok {
		return 0, &mpx.MissingFieldError{
			Field: constants.KeyTotalResults,
			Context: map[string]interface{}{
				"url":     c.BuildURL("", params),
				"payload": envelope,
			},
		}
	}

	return count, nil
}

// GetCountSince implements mpx.MediaFeedClient.GetCountSince.
func (c *MediaFeedClient) GetCountSince(ctx context.Context, since time.Time, extra url.Values) (int, error) {
	return c.GetCount(ctx, sinceParams(since, extra))
}

// GetEntries implements mpx.MediaFeedClient.GetEntries.
func (c *MediaFeedClient) GetEntries(ctx context.Context, query mpx.FeedQuery) ([]mpx.FeedEntry, error) {
	params, err := entriesParams(query)
	if err != nil {
		return nil, err
	}

	envelope, err := c.Get(ctx, "", nil, params)
	if err != nil {
		return nil, fmt.Errorf("getting feed entries: %w", err)
	}

	entries, ok := envelope.Entries()
	if !ok {
		return nil, c.missingEntries(envelope, params, map[string]interface{}{
			"start":      query.Start,
			"numEntries": query.Count,
			"fields":     query.Fields,
		})
	}

	return entries, nil
}

// GetEntriesGeneric implements mpx.MediaFeedClient.GetEntriesGeneric. The
// options are sent as query parameters unchanged.
func (c *MediaFeedClient) GetEntriesGeneric(ctx context.Context, options url.Values) ([]mpx.FeedEntry, error) {
	params := Params{Query: mergeQuery(options)}

	envelope, err := c.Get(ctx, "", nil, params)
	if err != nil {
		return nil, fmt.Errorf("getting feed entries: %w", err)
	}

	entries, ok := envelope.Entries()
	if !ok {
		return nil, c.missingEntries(envelope, params, nil)
	}

	return entries, nil
}

// GetSingleEntry implements mpx.MediaFeedClient.GetSingleEntry. It returns
// nil without error when the feed has no entry with that id.
func (c *MediaFeedClient) GetSingleEntry(ctx context.Context, id string, fields []string) (mpx.FeedEntry, error) {
	params := singleEntryParams(id, fields)

	envelope, err := c.Get(ctx, "", nil, params)
	if err != nil {
		return nil, fmt.Errorf("getting feed entry %s: %w", id, err)
	}

	entries, ok := envelope.Entries()
	if !ok {
		return nil, c.missingEntries(envelope, params, map[string]interface{}{"id": id, "fields": fields})
	}

	if len(entries) == 0 {
		return nil, nil
	}

	return entries[0], nil
}

// BuildURLGetCount implements mpx.MediaFeedClient.BuildURLGetCount.
func (c *MediaFeedClient) BuildURLGetCount(extra url.Values) string {
	return c.BuildURL("", countParams(extra))
}

// BuildURLGetCountSince implements mpx.MediaFeedClient.BuildURLGetCountSince.
func (c *MediaFeedClient) BuildURLGetCountSince(since time.Time, extra url.Values) string {
	return c.BuildURL("", countParams(sinceParams(since, extra)))
}

// BuildURLGetEntries implements mpx.MediaFeedClient.BuildURLGetEntries.
func (c *MediaFeedClient) BuildURLGetEntries(query mpx.FeedQuery) (string, error) {
	params, err := entriesParams(query)
	if err != nil {
		return "", err
	}

	return c.BuildURL("", params), nil
}

// BuildURLGetEntriesGeneric implements mpx.MediaFeedClient.BuildURLGetEntriesGeneric.
func (c *MediaFeedClient) BuildURLGetEntriesGeneric(options url.Values) string {
	return c.BuildURL("", Params{Query: mergeQuery(options)})
}

// BuildURLGetSingleEntry implements mpx.MediaFeedClient.BuildURLGetSingleEntry.
func (c *MediaFeedClient) BuildURLGetSingleEntry(id string, fields []string) string {
	return c.BuildURL("", singleEntryParams(id, fields))
}

func (c *MediaFeedClient) missingEntries(envelope mpx.Envelope, params Params, call map[string]interface{}) error {
	details := map[string]interface{}{
		"service": "MediaFeed",
		"acctId":  c.accountPID,
		"feedPid": c.feedPID,
		"url":     c.BuildURL("", params),
		"params":  params.Query,
		"data":    envelope,
	}

	for k, v := range call {
		details[k] = v
	}

	return &mpx.MissingFieldError{Field: constants.KeyEntries, Context: details}
}

// The parameter builders below are shared by the executing methods and
// their BuildURL counterparts so both always send the same query.

func countParams(extra url.Values) Params {
	base := url.Values{
		constants.QueryCount:   []string{constants.BooleanTrue},
		constants.QueryEntries: []string{constants.BooleanFalse},
	}

	return Params{Query: mergeQuery(base, extra)}
}

// sinceParams returns extra with a byUpdated lower bound when since is set.
func sinceParams(since time.Time, extra url.Values) url.Values {
	if since.IsZero() {
		return extra
	}

	return mergeQuery(url.Values{constants.QueryByUpdated: []string{mpx.FormatSince(since)}}, extra)
}

func entriesParams(query mpx.FeedQuery) (Params, error) {
	values, err := query.ToValues()
	if err != nil {
		return Params{}, err
	}

	return Params{Query: values}, nil
}

func singleEntryParams(id string, fields []string) Params {
	query := url.Values{constants.QueryByID: []string{id}}
	if len(fields) > 0 {
		query.Set(constants.QueryFields, strings.Join(fields, ","))
	}

	return Params{Query: query}
}
