package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// FeedConfigClient implements mpx.FeedConfigClient.
type FeedConfigClient struct {
	*BaseClient

	token string
}

// NewFeedConfigClient creates a new feed config client.
func NewFeedConfigClient(config mpx.Config, token string) *FeedConfigClient {
	return &FeedConfigClient{
		BaseClient: NewBaseClient(config),
		token:      token,
	}
}

// GetEntries implements mpx.FeedConfigClient.GetEntries.
func (c *FeedConfigClient) GetEntries(ctx context.Context, account string, options mpx.FeedConfigOptions) ([]mpx.FeedEntry, error) {
	err := validate.Var(account, "required")
	if err != nil {
		return nil, &mpx.ValidationError{Field: constants.QueryAccount, Err: mpx.ErrAccountRequired}
	}

	query := url.Values{
		constants.QueryToken:   []string{c.token},
		constants.QueryAccount: []string{account},
	}

	if len(options.Fields) > 0 {
		query.Set(constants.QueryFields, strings.Join(options.Fields, ","))
	}

	if options.Filter != nil {
		err = validate.Struct(options.Filter)
		if err != nil {
			return nil, &mpx.ValidationError{Field: "filter", Err: err}
		}

		query.Set(options.Filter.Field, options.Filter.Value)
	}

	envelope, err := c.Get(ctx, constants.FeedConfigPath, nil, Params{Query: query})
	if err != nil {
		return nil, fmt.Errorf("listing feed configs: %w", err)
	}

	entries, ok := envelope.Entries()
	if !ok {
		return nil, &mpx.MissingFieldError{
			Field: constants.KeyEntries,
			Context: map[string]interface{}{
				"service": "FeedConfig",
				"account": account,
				"data":    envelope,
			},
		}
	}

	return entries, nil
}
