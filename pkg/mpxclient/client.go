// Package mpxclient provides the main entry point for creating MPX clients
package mpxclient

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/fivetwenty-io/mpx-client/internal/client"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// Option adjusts the configuration of a client for endpoint before it is built.
type Option func(endpoint mpx.Endpoint, config *mpx.Config)

// WithFormat sets the "form" query parameter.
func WithFormat(format string) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.Format = format
	}
}

// WithSchema sets the "schema" query parameter.
func WithSchema(schema string) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.Schema = schema
	}
}

// WithBaseURL replaces the base URL of every client built with the option.
func WithBaseURL(baseURL string) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.BaseURL = baseURL
	}
}

// WithEndpointBaseURL replaces the base URL of endpoint only. Sessions build
// clients for several endpoints and need one URL per endpoint.
func WithEndpointBaseURL(endpoint mpx.Endpoint, baseURL string) Option {
	return func(target mpx.Endpoint, config *mpx.Config) {
		if target == endpoint {
			config.BaseURL = baseURL
		}
	}
}

// WithLogger sets the logger receiving request URLs and client events.
func WithLogger(logger mpx.Logger) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.Logger = logger
	}
}

// WithStrictHTTPStatus selects how GET failures are detected.
func WithStrictHTTPStatus(strict bool) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.StrictHTTPStatus = strict
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.HTTPClient = httpClient
	}
}

// WithUserAgent sets the product part of the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.UserAgent = userAgent
	}
}

// WithVersion sets the version part of the User-Agent header.
func WithVersion(version string) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.Version = version
	}
}

// WithRetry enables retries of connection errors, 5xx and 429 responses.
func WithRetry(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.RetryMax = maxRetries
		config.RetryWaitMin = waitMin
		config.RetryWaitMax = waitMax
	}
}

// WithDebug enables response logging.
func WithDebug(debug bool) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.Debug = debug
	}
}

// WithTimeout sets the HTTP timeout used when no HTTP client is given.
func WithTimeout(timeout time.Duration) Option {
	return func(_ mpx.Endpoint, config *mpx.Config) {
		config.HTTPTimeout = timeout
	}
}

// BuildConfig returns the defaults of endpoint with opts applied, validated.
func BuildConfig(endpoint mpx.Endpoint, opts ...Option) (mpx.Config, error) {
	if !slices.Contains(mpx.Endpoints(), endpoint) {
		return mpx.Config{}, fmt.Errorf("%w: %q", mpx.ErrUnknownEndpoint, endpoint)
	}

	config := mpx.DefaultConfig(endpoint)

	for _, opt := range opts {
		opt(endpoint, &config)
	}

	err := config.Validate()
	if err != nil {
		return mpx.Config{}, fmt.Errorf("invalid %s config: %w", endpoint, err)
	}

	return config, nil
}

// NewAuthenticationClient creates a client for the identity service. The
// returned client must be closed to release its token.
func NewAuthenticationClient(opts ...Option) (mpx.AuthenticationClient, error) {
	config, err := BuildConfig(mpx.EndpointAuthentication, opts...)
	if err != nil {
		return nil, err
	}

	return client.NewAuthenticationClient(config), nil
}

// NewFeedConfigClient creates a FeedConfig client bound to token.
func NewFeedConfigClient(token string, opts ...Option) (mpx.FeedConfigClient, error) {
	config, err := BuildConfig(mpx.EndpointFeedConfig, opts...)
	if err != nil {
		return nil, err
	}

	return client.NewFeedConfigClient(config, token), nil
}

// NewMediaFeedClient creates a client for one public feed of one account.
func NewMediaFeedClient(accountPID, feedPID string, opts ...Option) (mpx.MediaFeedClient, error) {
	if accountPID == "" {
		return nil, &mpx.ValidationError{Field: "accountPID", Err: mpx.ErrAccountRequired}
	}

	if feedPID == "" {
		return nil, &mpx.ValidationError{Field: "feedPID", Err: mpx.ErrFeedRequired}
	}

	config, err := BuildConfig(mpx.EndpointMediaFeed, opts...)
	if err != nil {
		return nil, err
	}

	return client.NewMediaFeedClient(config, accountPID, feedPID), nil
}

// NewMediaRequestClient creates a MediaRequest client bound to token.
func NewMediaRequestClient(token string, opts ...Option) (mpx.MediaRequestClient, error) {
	config, err := BuildConfig(mpx.EndpointMediaRequest, opts...)
	if err != nil {
		return nil, err
	}

	return client.NewMediaRequestClient(config, token), nil
}

// NewMediaClient creates a Media data client bound to token.
func NewMediaClient(token string, opts ...Option) (mpx.MediaClient, error) {
	config, err := BuildConfig(mpx.EndpointMedia, opts...)
	if err != nil {
		return nil, err
	}

	return client.NewMediaClient(config, token), nil
}
