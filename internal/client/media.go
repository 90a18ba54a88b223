package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// MediaClient implements mpx.MediaClient.
type MediaClient struct {
	*BaseClient

	token string
}

// NewMediaClient creates a new media client.
func NewMediaClient(config mpx.Config, token string) *MediaClient {
	return &MediaClient{
		BaseClient: NewBaseClient(config),
		token:      token,
	}
}

// PutPluralJSON implements mpx.MediaClient.PutPluralJSON.
//
// With a JSON content type the media service suppresses HTTP error codes
// unless httpError=true is sent, so it is always requested. The service does
// not honour it consistently; check the result with mpx.IsResponseSuccessful.
func (c *MediaClient) PutPluralJSON(ctx context.Context, urlParams url.Values, body interface{}) (*mpx.RawResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding media records: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	query := mergeQuery(url.Values{
		constants.QueryHTTPError: []string{constants.BooleanTrue},
		constants.QueryToken:     []string{c.token},
	}, urlParams)

	resp, err := c.Put(ctx, "", headers, payload, Params{Query: query})
	if err != nil {
		return nil, fmt.Errorf("updating media: %w", err)
	}

	return resp, nil
}
