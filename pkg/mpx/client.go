package mpx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
)

// validate is shared; building a validator is expensive.
var validate = validator.New()

// Endpoint names one MPX endpoint family.
type Endpoint string

const (
	EndpointAuthentication Endpoint = "authentication"
	EndpointFeedConfig     Endpoint = "feed-config"
	EndpointMediaFeed      Endpoint = "media-feed"
	EndpointMediaRequest   Endpoint = "media-request"
	EndpointMedia          Endpoint = "media"
)

// Endpoints lists every endpoint in a stable order.
func Endpoints() []Endpoint {
	return []Endpoint{
		EndpointAuthentication,
		EndpointFeedConfig,
		EndpointMediaFeed,
		EndpointMediaRequest,
		EndpointMedia,
	}
}

// Config holds the per-client request defaults.
//
// A client copies its Config at construction and never changes it
// afterwards, so mutating a Config value after handing it to a constructor
// affects only clients built later.
type Config struct {
	// UserAgent and Version form the "<UserAgent>/<Version>" User-Agent header.
	UserAgent string `validate:"required"`
	Version   string `validate:"required"`
	// BaseURL is the endpoint root every relative path is resolved against.
	BaseURL string `validate:"required,url"`
	// Format is sent as the "form" query parameter.
	Format string `validate:"required"`
	// Schema is sent as the "schema" query parameter.
	Schema string `validate:"required"`

	// StrictHTTPStatus makes GET calls fail with HTTPStatusError on any status
	// other than 200. When false, GET calls rely on the envelope's isException
	// marker instead and report it as a RemoteError.
	StrictHTTPStatus bool

	// Logger receives every outgoing request URL. Optional.
	Logger Logger `validate:"-"`
	// Debug additionally logs every response status.
	Debug bool

	// HTTPClient replaces the underlying transport client. Optional.
	HTTPClient *http.Client `validate:"-"`
	// HTTPTimeout applies when HTTPClient is nil.
	HTTPTimeout time.Duration

	// RetryMax enables transport level retries of connection errors and
	// 5xx/429 responses. Zero disables retries.
	RetryMax     int           `validate:"gte=0"`
	RetryWaitMin time.Duration `validate:"gte=0"`
	RetryWaitMax time.Duration `validate:"gte=0"`
}

// DefaultConfig returns a fresh copy of the library defaults for endpoint.
// Unknown endpoints get the generic defaults with an empty BaseURL.
func DefaultConfig(endpoint Endpoint) Config {
	cfg := Config{
		UserAgent:        constants.DefaultUserAgent,
		Version:          constants.DefaultVersion,
		Format:           constants.DefaultFormat,
		Schema:           constants.DefaultSchema,
		StrictHTTPStatus: true,
		HTTPTimeout:      constants.DefaultHTTPTimeout,
	}

	switch endpoint {
	case EndpointAuthentication:
		cfg.BaseURL = constants.AuthenticationBaseURL
		cfg.Schema = constants.AuthenticationSchema
	case EndpointFeedConfig:
		cfg.BaseURL = constants.FeedConfigBaseURL
		cfg.Schema = constants.FeedConfigSchema
	case EndpointMediaFeed:
		cfg.BaseURL = constants.MediaFeedBaseURL
		cfg.Schema = constants.MediaFeedSchema
	case EndpointMediaRequest:
		cfg.BaseURL = constants.MediaRequestBaseURL
		cfg.Schema = constants.MediaRequestSchema
	case EndpointMedia:
		cfg.BaseURL = constants.MediaBaseURL
		cfg.Schema = constants.MediaSchema
		// The media service answers 200 even on failure; callers inspect the body.
		cfg.StrictHTTPStatus = false
	}

	return cfg
}

// UserAgentHeader returns the value sent in the User-Agent header.
func (c Config) UserAgentHeader() string {
	return fmt.Sprintf("%s/%s", c.UserAgent, c.Version)
}

// DefaultQuery returns the query parameters sent with every request.
func (c Config) DefaultQuery() url.Values {
	return url.Values{
		constants.QueryForm:   []string{c.Format},
		constants.QuerySchema: []string{c.Schema},
	}
}

// Validate checks the config for missing or malformed values.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return &ValidationError{Field: "config", Err: err}
	}

	return nil
}

// AuthenticationClient signs in to and out of the MPX identity service.
// Close signs out a still-held token; callers must call it when done.
type AuthenticationClient interface {
	SignIn(ctx context.Context, user, pass string) (bool, error)
	SignOut(ctx context.Context, token string) bool
	Token() string
	Config() Config
	Close() error
}

// FeedConfigClient lists FeedConfig objects of an account.
type FeedConfigClient interface {
	GetEntries(ctx context.Context, account string, options FeedConfigOptions) ([]FeedEntry, error)
	Config() Config
}

// MediaFeedClient queries one public feed of one account.
//
// Every executing method has a BuildURL counterpart producing the URL the
// call would request, built from the same parameters.
type MediaFeedClient interface {
	GetCount(ctx context.Context, extra url.Values) (int, error)
	GetCountSince(ctx context.Context, since time.Time, extra url.Values) (int, error)
	GetEntries(ctx context.Context, query FeedQuery) ([]FeedEntry, error)
	GetEntriesGeneric(ctx context.Context, options url.Values) ([]FeedEntry, error)
	GetSingleEntry(ctx context.Context, id string, fields []string) (FeedEntry, error)

	BuildURLGetCount(extra url.Values) string
	BuildURLGetCountSince(since time.Time, extra url.Values) string
	BuildURLGetEntries(query FeedQuery) (string, error)
	BuildURLGetEntriesGeneric(options url.Values) string
	BuildURLGetSingleEntry(id string, fields []string) string

	AccountPID() string
	FeedPID() string
	Config() Config
}

// MediaRequestClient reads per-media request counts.
type MediaRequestClient interface {
	GetEntries(ctx context.Context, options url.Values) ([]MediaRequestEntry, error)
	Config() Config
}

// MediaClient writes media records. Its responses must be checked with
// IsResponseSuccessful and ResponseError rather than by HTTP status.
type MediaClient interface {
	PutPluralJSON(ctx context.Context, urlParams url.Values, body interface{}) (*RawResponse, error)
	Config() Config
}
