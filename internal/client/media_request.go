package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

var validate = validator.New()

// MediaRequestClient implements mpx.MediaRequestClient.
type MediaRequestClient struct {
	*BaseClient

	token string
}

// NewMediaRequestClient creates a new media request client.
func NewMediaRequestClient(config mpx.Config, token string) *MediaRequestClient {
	return &MediaRequestClient{
		BaseClient: NewBaseClient(config),
		token:      token,
	}
}

// GetEntries implements mpx.MediaRequestClient.GetEntries.
//
// options must carry an account; range defaults to the first 2000 entries.
// An exception envelope is reported with the server's description.
func (c *MediaRequestClient) GetEntries(ctx context.Context, options url.Values) ([]mpx.MediaRequestEntry, error) {
	err := validate.Var(options.Get(constants.QueryAccount), "required")
	if err != nil {
		return nil, &mpx.ValidationError{Field: constants.QueryAccount, Err: mpx.ErrAccountRequired}
	}

	base := url.Values{
		constants.QueryToken: []string{c.token},
		constants.QueryRange: []string{"1-" + strconv.Itoa(constants.DefaultMediaRequestLimit)},
	}
	// form and schema are also sent by the transport; setting them here keeps
	// them in the request even when a caller overrides the transport defaults.
	base.Set(constants.QueryForm, c.config.Format)
	base.Set(constants.QuerySchema, c.config.Schema)

	params := Params{Query: mergeQuery(base, options)}

	envelope, err := c.Get(ctx, "", nil, params)
	if err != nil {
		return nil, fmt.Errorf("getting media requests: %w", err)
	}

	raw, ok := envelope.Entries()
	if !ok {
		if remote := envelope.Exception(); remote != nil {
			return nil, remote
		}

		return nil, &mpx.MissingFieldError{
			Field: constants.KeyEntries,
			Context: map[string]interface{}{
				"service": "MediaRequest",
				"url":     mpx.RedactURL(c.BuildURL("", params)),
				"data":    envelope,
			},
		}
	}

	entries := make([]mpx.MediaRequestEntry, 0, len(raw))

	for _, entry := range raw {
		massaged, err := massageRequestEntry(entry)
		if err != nil {
			return nil, err
		}

		entries = append(entries, massaged)
	}

	return entries, nil
}

// massageRequestEntry reduces the media URI to its trailing id.
func massageRequestEntry(entry mpx.FeedEntry) (mpx.MediaRequestEntry, error) {
	mediaID, ok := entry[constants.KeyRequestMediaID].(string)
	if !ok {
		return mpx.MediaRequestEntry{}, &mpx.MissingFieldError{
			Field:   constants.KeyRequestMediaID,
			Context: map[string]interface{}{"service": "MediaRequest", "entry": entry},
		}
	}

	count, ok := mpx.Envelope(entry).Int(constants.KeyRequestCount)
	if !ok {
		return mpx.MediaRequestEntry{}, &mpx.MissingFieldError{
			Field:   constants.KeyRequestCount,
			Context: map[string]interface{}{"service": "MediaRequest", "entry": entry},
		}
	}

	return mpx.MediaRequestEntry{
		MediaID:      mpx.ExtractIDString(mediaID),
		RequestCount: count,
	}, nil
}
