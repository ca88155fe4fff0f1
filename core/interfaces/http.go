package interfaces

import (
	"context"
	"io"
)

// HTTPClient is the outbound transport used by the courier client and the
// Supabase settings store. Implementations decide on retries; callers must
// close the returned body.
type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)

	// Post sends body as JSON unless headers set another Content-Type.
	// It is never retried.
	Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (Response, error)
}

// Response is the subset of an HTTP response the services read
type Response interface {
	StatusCode() int
	Body() io.ReadCloser

	// Header looks up a header case-insensitively, returning "" when absent.
	Header(key string) string
}
