// Package http wraps go-retryablehttp with the request shape the MPX
// clients need: a base URL, default query parameters, raw bodies and a
// request-URL log hook.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// BasicAuth carries HTTP basic credentials for one request.
type BasicAuth struct {
	Username string
	Password string
}

// Request describes one call relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is sent as-is when it is []byte or string, JSON encoded otherwise.
	Body interface{}
	Auth *BasicAuth
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	URL        string
}

// Raw converts the response to the public RawResponse type.
func (r *Response) Raw() *mpx.RawResponse {
	return &mpx.RawResponse{
		StatusCode: r.StatusCode,
		Header:     r.Headers,
		Body:       r.Body,
		URL:        r.URL,
	}
}

// Client sends requests against a single base URL.
type Client struct {
	baseURL      string
	defaultQuery url.Values
	userAgent    string
	logger       mpx.Logger
	debug        bool
	retryClient  *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger receiving request URLs.
func WithLogger(logger mpx.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithDefaultQuery sets parameters merged under every request's query.
func WithDefaultQuery(query url.Values) Option {
	return func(c *Client) {
		c.defaultQuery = query
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.retryClient.HTTPClient = httpClient
		}
	}
}

// WithTimeout sets the timeout of the underlying *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.retryClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig enables retries of connection errors, 5xx and 429 responses.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = maxRetries
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a client for baseURL. Retries are disabled unless
// WithRetryConfig is given, and non-2xx responses are handed back rather
// than turned into errors.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:     baseURL,
		userAgent:   constants.DefaultUserAgent + "/" + constants.DefaultVersion,
		retryClient: retryClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient.RequestLogHook = client.logRequest

	return client
}

// BaseURL returns the URL relative paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildURL composes the absolute URL of req without sending it. Request
// query values override the client's default query.
func (c *Client) BuildURL(req *Request) string {
	query := url.Values{}

	for k, v := range c.defaultQuery {
		query[k] = append([]string(nil), v...)
	}

	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}

	target := joinURL(c.baseURL, req.Path)
	if len(query) == 0 {
		return target
	}

	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}

	return target + separator + query.Encode()
}

// Do sends req. Only failures to obtain a response are returned as errors,
// as *mpx.TransportError; any status code is returned in the Response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target := c.BuildURL(req)

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &mpx.TransportError{Method: req.Method, URL: target, Err: err}
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, &mpx.TransportError{Method: req.Method, URL: target, Err: err}
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if req.Auth != nil {
		httpReq.SetBasicAuth(req.Auth.Username, req.Auth.Password)
	}

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, &mpx.TransportError{Method: req.Method, URL: target, Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &mpx.TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if c.debug {
		c.log(mpx.LevelDebug, "HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         mpx.RedactURL(target),
			"status_code": httpResp.StatusCode,
			"bytes":       len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		URL:        target,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// logRequest runs before every attempt, retries included.
func (c *Client) logRequest(_ retryablehttp.Logger, req *http.Request, attempt int) {
	fields := map[string]interface{}{"method": req.Method}
	if attempt > 0 {
		fields["attempt"] = attempt
	}

	c.log(mpx.LevelInfo, "Request url = "+mpx.RedactURL(req.URL.String()), fields)
}

// log never lets a misbehaving logger affect the request.
func (c *Client) log(level mpx.Level, msg string, fields map[string]interface{}) {
	defer func() {
		_ = recover()
	}()

	mpx.Log(c.logger, level, msg, fields)
}

func encodeBody(body interface{}) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case string:
		return []byte(b), "", nil
	default:
		buf := &bytes.Buffer{}

		err := json.NewEncoder(buf).Encode(b)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return bytes.TrimRight(buf.Bytes(), "\n"), "application/json", nil
	}
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}

	if strings.HasSuffix(base, "/") {
		return base + strings.TrimPrefix(path, "/")
	}

	return base + "/" + strings.TrimPrefix(path, "/")
}
