package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultUserAgent identifies SDK traffic when no user agent is configured.
const DefaultUserAgent = "postboard-sdk/0.1"

// TokenSource yields the bearer token attached to outbound requests.
// It is consulted synchronously before every request; an empty token means
// the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client is the HTTP adapter for the postboard REST API. It encodes request
// bodies, injects the bearer token and maps failures onto the SDK error types.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient  *http.Client
	TokenSource TokenSource
	UserAgent   string
	Timeout     time.Duration
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTokenSource sets where bearer tokens are read from.
func WithTokenSource(source TokenSource) ClientOption {
	return func(opts *ClientOptions) {
		opts.TokenSource = source
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(opts *ClientOptions) {
		opts.UserAgent = ua
	}
}

// WithTimeout bounds each request when the SDK builds its own http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = d
	}
}

// NewClient creates a new SDK client that talks to the API at baseURL.
// An http.Client is created automatically when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{Timeout: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   baseURL,
		http:      opts.HTTPClient,
		tokens:    opts.TokenSource,
		userAgent: opts.UserAgent,
	}
}

// BaseURL returns the API root this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	query     url.Values
	bearer    string
	bearerSet bool
}

// RequestOption tweaks a single request.
type RequestOption func(*requestOptions)

// WithQuery appends query parameters to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		o.query = q
	}
}

// WithBearer sends token instead of the one held by the client's TokenSource.
func WithBearer(token string) RequestOption {
	return func(o *requestOptions) {
		o.bearer = token
		o.bearerSet = true
	}
}

// WithoutAuth sends the request with no Authorization header.
func WithoutAuth() RequestOption {
	return WithBearer("")
}

// Do performs a request and decodes a JSON response into out (when non-nil).
//
// Failures are reported as *NetworkError when no response arrived, *HTTPError
// for non-2xx statuses and *ProtocolError when a 2xx body is not valid JSON.
func (c *Client) Do(ctx context.Context, method, path string, body Body, out any, opts ...RequestOption) error {
	ro := requestOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	endpoint, err := c.endpoint(path, ro.query)
	if err != nil {
		return err
	}

	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		reader, contentType, err = body.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	token := ro.bearer
	if !ro.bearerSet && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	op := method + " " + path
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ProtocolError{Reason: "response is not valid JSON", Err: err}
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	joined, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", c.baseURL, err)
	}
	if len(query) == 0 {
		return joined, nil
	}
	return joined + "?" + query.Encode(), nil
}
