// ABOUTME: FAN Courier integration client for AWB generation, labels and tracking
// ABOUTME: Authenticates lazily and keeps the session token in memory

// Package courier wraps the FAN Courier REST API. A Service logs in on first
// use, reuses its bearer token until shortly before the provider's 24 hour
// validity ends, and reports every failure through the typed errors in
// core/errors.
package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"
	"bluehand-admin-api/core/interfaces"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the FAN Courier API root
	DefaultBaseURL = "https://api.fancourier.ro"

	// DefaultTokenLifetime is kept below the provider's 24h validity
	DefaultTokenLifetime = 23 * time.Hour

	// DefaultTrackingURLTemplate renders the public tracking page for an AWB
	DefaultTrackingURLTemplate = "https://www.fancourier.ro/awb-tracking/?tracking=%s"

	apiName          = "fancourier"
	maxResponseBytes = 10 << 20
)

// CredentialsSource supplies the credentials for a login attempt
type CredentialsSource interface {
	Credentials(ctx context.Context) (domain.Credentials, error)
}

// Service is the courier client. It is safe for concurrent use.
type Service struct {
	httpClient          interfaces.HTTPClient
	credentials         CredentialsSource
	logger              interfaces.Logger
	metrics             interfaces.Metrics
	baseURL             string
	tokenLifetime       time.Duration
	trackingURLTemplate string
	sortEventsByDate    bool
	now                 func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
	logins singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenLifetime sets how long a login token is reused
func WithTokenLifetime(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tokenLifetime = d
		}
	}
}

// WithTrackingURLTemplate sets the fmt template for public tracking links
func WithTrackingURLTemplate(tmpl string) Option {
	return func(s *Service) {
		if tmpl != "" {
			s.trackingURLTemplate = tmpl
		}
	}
}

// WithSortEventsByDate orders tracking events newest first by their date
// instead of trusting the upstream order
func WithSortEventsByDate(enabled bool) Option {
	return func(s *Service) {
		s.sortEventsByDate = enabled
	}
}

// NewService creates a courier client
func NewService(deps interfaces.Dependencies, credentials CredentialsSource, opts ...Option) *Service {
	s := &Service{
		httpClient:          deps.HTTPClient,
		credentials:         credentials,
		logger:              deps.LoggerOrNop(),
		metrics:             deps.MetricsOrNop(),
		baseURL:             DefaultBaseURL,
		tokenLifetime:       DefaultTokenLifetime,
		trackingURLTemplate: DefaultTrackingURLTemplate,
		sortEventsByDate:    true,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset drops the cached session token
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiry = time.Time{}
}

// apiResponse is a fully read courier response
type apiResponse struct {
	statusCode  int
	contentType string
	body        []byte
}

func (r *apiResponse) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// call performs one request against the courier API. Authenticated calls
// carry the bearer token; a 401 drops it so the next call logs in again.
func (s *Service) call(ctx context.Context, endpoint, method, path string, payload interface{}, authenticated bool) (*apiResponse, error) {
	headers := map[string]string{"Accept": "application/json"}
	if authenticated {
		token, err := s.Authenticate(ctx)
		if err != nil {
			return nil, err
		}
		headers["Authorization"] = "Bearer " + token
	}

	url := s.baseURL + path
	start := time.Now()

	var (
		resp interfaces.Response
		err  error
	)
	switch method {
	case http.MethodPost:
		body, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, errors.WrapError(marshalErr, "failed to encode request")
		}
		resp, err = s.httpClient.Post(ctx, url, bytes.NewReader(body), headers)
	default:
		resp, err = s.httpClient.Get(ctx, url, headers)
	}
	if err != nil {
		s.metrics.CourierRequest(endpoint, 0, time.Since(start))
		return nil, err
	}

	body := resp.Body()
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	s.metrics.CourierRequest(endpoint, resp.StatusCode(), time.Since(start))
	if err != nil {
		return nil, errors.WrapError(err, "failed to read courier response")
	}

	if authenticated && resp.StatusCode() == http.StatusUnauthorized {
		s.Reset()
	}

	return &apiResponse{
		statusCode:  resp.StatusCode(),
		contentType: resp.Header("Content-Type"),
		body:        data,
	}, nil
}

// apiError builds an ExternalAPIError from a non-OK response
func apiError(resp *apiResponse, fallback string) *errors.ExternalAPIError {
	message := upstreamMessage(resp.body)
	if message == "" {
		message = fallback
	}
	return &errors.ExternalAPIError{
		StatusCode: resp.statusCode,
		Message:    message,
		API:        apiName,
		Details:    string(resp.body),
	}
}

func upstreamMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error", "errors.0.message", "errors.0"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// transportError wraps a failed request
func transportError(err error, endpoint string) error {
	if errors.IsAuthentication(err) || errors.IsConfiguration(err) {
		return err
	}
	return &errors.ExternalAPIError{
		Message: endpoint + " request failed: " + err.Error(),
		API:     apiName,
	}
}
