package alloy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound request unless overridden
const DefaultTimeout = 30 * time.Second

// Credentials holds the API key pair used for HTTP Basic authentication
type Credentials struct {
	APIKey    string
	APISecret string
}

// Observer receives the outcome of every outbound request; used by the
// metrics layer without coupling the client to it
type Observer interface {
	ObserveOutbound(statusCode int, err error)
}

// Option configures the client
type Option func(*Client)

// WithBaseURL sets a custom base URL, overriding the environment table
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithObserver attaches a request observer
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// Client issues authenticated requests against the Alloy API and
// normalizes success and error shapes for every caller.
type Client struct {
	baseURL    string
	creds      Credentials
	timeout    time.Duration
	httpClient *http.Client
	observer   Observer
}

// NewClient creates a client targeting production unless WithBaseURL
// overrides it
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: environmentBaseURLs[Production],
		creds:   creds,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Do issues one request. body is JSON-marshaled when non-nil; query is
// flattened into the URL. Non-2xx responses come back as *APIError,
// transport deadline failures wrap ErrTimeout.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.creds.APIKey, c.creds.APISecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.normalizeTransportError(err)
		c.observe(0, err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("reading response: %w", err)
		c.observe(resp.StatusCode, err)
		return nil, err
	}

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		c.observe(resp.StatusCode, apiErr)
		return nil, apiErr
	}

	c.observe(resp.StatusCode, nil)
	return json.RawMessage(respBody), nil
}

// normalizeTransportError maps client-side aborts and deadline
// failures onto ErrTimeout; everything else stays a transport error
func (c *Client) normalizeTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
	}

	return fmt.Errorf("transport failure: %w", err)
}

func (c *Client) observe(statusCode int, err error) {
	if c.observer != nil {
		c.observer.ObserveOutbound(statusCode, err)
	}
}
