// ABOUTME: net/http backed HTTPClient used for the courier and Supabase calls
// ABOUTME: Idempotent GETs are retried with backoff on transport errors and 5xx answers

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bluehand-admin-api/core/interfaces"
)

const (
	defaultRetries   = 3
	defaultBackoff   = 100 * time.Millisecond
	defaultUserAgent = "BluehandAdminAPI/1.0"
)

// Client implements interfaces.HTTPClient
type Client struct {
	client    *http.Client
	retries   int
	backoff   time.Duration
	userAgent string
	logger    interfaces.Logger
}

// Option configures a Client
type Option func(*Client)

// WithRetries sets how many attempts a GET gets in total. Values below one
// mean a single attempt.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.retries = n
	}
}

// WithBackoff sets the delay before the first retry. Later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger logs retried attempts
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client whose requests time out after timeout
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		client:    &http.Client{Timeout: timeout},
		retries:   defaultRetries,
		backoff:   defaultBackoff,
		userAgent: defaultUserAgent,
		logger:    interfaces.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			c.logger.Debug("Retrying GET", map[string]interface{}{
				"url":     url,
				"attempt": attempt + 1,
				"error":   lastErr.Error(),
			})
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, headers)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		if resp.StatusCode < http.StatusInternalServerError || attempt == c.retries-1 {
			return newResponse(resp), nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return nil, lastErr
}

// Post performs a POST request once. Content-Type defaults to JSON.
func (c *Client) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, headers)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return newResponse(resp), nil
}

func (c *Client) setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// response adapts *http.Response to interfaces.Response
type response struct {
	resp *http.Response
}

func newResponse(resp *http.Response) response {
	return response{resp: resp}
}

func (r response) StatusCode() int          { return r.resp.StatusCode }
func (r response) Body() io.ReadCloser      { return r.resp.Body }
func (r response) Header(key string) string { return r.resp.Header.Get(key) }
