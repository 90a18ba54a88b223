package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	mpxhttp "github.com/fivetwenty-io/mpx-client/internal/http"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// Params carries the per-call query and credentials.
type Params struct {
	Query url.Values
	Auth  *mpxhttp.BasicAuth
}

// BaseClient builds and executes requests for one endpoint family.
//
// The transport is created on first use and reused afterwards. A BaseClient
// is not safe for concurrent use.
type BaseClient struct {
	config     mpx.Config
	baseURL    string
	httpClient *mpxhttp.Client
}

// NewBaseClient creates a base client for config. The config is copied.
func NewBaseClient(config mpx.Config) *BaseClient {
	return &BaseClient{
		config:  config,
		baseURL: config.BaseURL,
	}
}

// newScopedBaseClient creates a base client whose requests target baseURL
// instead of config.BaseURL.
func newScopedBaseClient(config mpx.Config, baseURL string) *BaseClient {
	return &BaseClient{
		config:  config,
		baseURL: baseURL,
	}
}

// Config returns a copy of the client configuration.
func (b *BaseClient) Config() mpx.Config {
	return b.config
}

// SetHTTPClient replaces the transport.
func (b *BaseClient) SetHTTPClient(httpClient *mpxhttp.Client) {
	b.httpClient = httpClient
}

// HTTPClient returns the transport, building it on first use.
func (b *BaseClient) HTTPClient() *mpxhttp.Client {
	if b.httpClient == nil {
		b.httpClient = mpxhttp.NewClient(b.baseURL, b.httpOptions()...)
		b.log(mpx.LevelDebug, "Setting base url: "+b.baseURL, nil)
	}

	return b.httpClient
}

func (b *BaseClient) httpOptions() []mpxhttp.Option {
	opts := []mpxhttp.Option{
		mpxhttp.WithUserAgent(b.config.UserAgentHeader()),
		mpxhttp.WithDefaultQuery(b.config.DefaultQuery()),
	}

	if b.config.Logger != nil {
		opts = append(opts, mpxhttp.WithLogger(b.config.Logger))
	}

	if b.config.Debug {
		opts = append(opts, mpxhttp.WithDebug(true))
	}

	if b.config.HTTPClient != nil {
		opts = append(opts, mpxhttp.WithHTTPClient(b.config.HTTPClient))
	} else {
		opts = append(opts, mpxhttp.WithTimeout(b.config.HTTPTimeout))
	}

	if b.config.RetryMax > 0 {
		waitMin := constants.DefaultRetryWaitMin
		waitMax := constants.ExtendedRetryWaitMax

		if b.config.RetryWaitMin > 0 {
			waitMin = b.config.RetryWaitMin
		}

		if b.config.RetryWaitMax > 0 {
			waitMax = b.config.RetryWaitMax
		}

		opts = append(opts, mpxhttp.WithRetryConfig(b.config.RetryMax, waitMin, waitMax))
	}

	return opts
}

// Get issues a GET and decodes the envelope.
//
// With StrictHTTPStatus any status other than 200 is an *mpx.HTTPStatusError;
// without it an isException envelope is returned as an *mpx.RemoteError.
func (b *BaseClient) Get(ctx context.Context, endpoint string, headers map[string]string, params Params) (mpx.Envelope, error) {
	resp, err := b.do(ctx, http.MethodGet, endpoint, headers, nil, params)
	if err != nil {
		return nil, err
	}

	if b.config.StrictHTTPStatus && resp.StatusCode != constants.HTTPStatusOK {
		return nil, statusError(resp)
	}

	envelope, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	if !b.config.StrictHTTPStatus && envelope.IsException() {
		return nil, envelope.Exception()
	}

	return envelope, nil
}

// Post issues a POST with a raw body and decodes the envelope. The status
// code and exception marker are left to the caller.
func (b *BaseClient) Post(ctx context.Context, endpoint string, headers map[string]string, body []byte, params Params) (mpx.Envelope, error) {
	resp, err := b.do(ctx, http.MethodPost, endpoint, headers, body, params)
	if err != nil {
		return nil, err
	}

	return decodeEnvelope(resp)
}

// Put issues a PUT and returns the undecoded response. Only transport
// failures are errors; the media service answers 200 even when the update
// failed, so the caller inspects the body.
func (b *BaseClient) Put(ctx context.Context, endpoint string, headers map[string]string, body []byte, params Params) (*mpx.RawResponse, error) {
	resp, err := b.do(ctx, http.MethodPut, endpoint, headers, body, params)
	if err != nil {
		return nil, err
	}

	return resp.Raw(), nil
}

func (b *BaseClient) do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte, params Params) (*mpxhttp.Response, error) {
	req := &mpxhttp.Request{
		Method:  method,
		Path:    endpoint,
		Query:   params.Query,
		Headers: headers,
		Auth:    params.Auth,
	}

	if body != nil {
		req.Body = body
	}

	return b.HTTPClient().Do(ctx, req)
}

// BuildURL returns the URL a call with the same arguments would request.
func (b *BaseClient) BuildURL(endpoint string, params Params) string {
	return b.HTTPClient().BuildURL(&mpxhttp.Request{Path: endpoint, Query: params.Query})
}

func (b *BaseClient) log(level mpx.Level, msg string, fields map[string]interface{}) {
	defer func() {
		_ = recover()
	}()

	mpx.Log(b.config.Logger, level, msg, fields)
}

func decodeEnvelope(resp *mpxhttp.Response) (mpx.Envelope, error) {
	envelope, err := mpx.ParseEnvelope(resp.Body)
	if err == nil {
		err = envelope.CheckEntries()
	}

	if err != nil {
		return nil, &mpx.MalformedResponseError{URL: resp.URL, Body: resp.Body, Err: err}
	}

	return envelope, nil
}

// statusError reports an unexpected status, keeping the server's exception
// when the body carries one.
func statusError(resp *mpxhttp.Response) *mpx.HTTPStatusError {
	statusErr := &mpx.HTTPStatusError{StatusCode: resp.StatusCode, URL: resp.URL, Body: resp.Body}

	envelope, err := mpx.ParseEnvelope(resp.Body)
	if err == nil {
		statusErr.Exception = envelope.Exception()
	}

	return statusErr
}

// mergeQuery overlays each later set onto the earlier ones, key by key.
func mergeQuery(sets ...url.Values) url.Values {
	merged := url.Values{}

	for _, set := range sets {
		for k, v := range set {
			merged[k] = append([]string(nil), v...)
		}
	}

	return merged
}
