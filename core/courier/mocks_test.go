package courier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"
)

// httpClient adapts net/http to interfaces.HTTPClient for tests
type httpClient struct{}

func (httpClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	return httpClient{}.do(ctx, http.MethodGet, url, nil, headers)
}

func (httpClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (interfaces.Response, error) {
	return httpClient{}.do(ctx, http.MethodPost, url, body, headers)
}

func (httpClient) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	return &response{resp: resp}, nil
}

type response struct {
	resp *http.Response
}

func (r *response) StatusCode() int          { return r.resp.StatusCode }
func (r *response) Body() io.ReadCloser      { return r.resp.Body }
func (r *response) Header(key string) string { return r.resp.Header.Get(key) }

// mockCredentials is a CredentialsSource with func-field overrides
type mockCredentials struct {
	creds domain.Credentials
	err   error
	calls int32
}

func (m *mockCredentials) Credentials(ctx context.Context) (domain.Credentials, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.creds, m.err
}

func validCredentials() *mockCredentials {
	return &mockCredentials{creds: domain.Credentials{
		Username: "bluehand",
		Password: "secret",
		ClientID: "7032158",
	}}
}

// fakeCourier is an in-process stand-in for the FAN Courier API
type fakeCourier struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	logins      int
	loginDelay  time.Duration
	loginStatus int
	loginBody   string
	token       string
	lastAWBReq  map[string]interface{}
	lastQuery   map[string][]string
	lastAuth    string
	awbStatus   int
	awbBody     string
	labelStatus int
	labelType   string
	labelBody   string
	trackStatus int
	trackBody   string
}

func newFakeCourier(t *testing.T) *fakeCourier {
	f := &fakeCourier{
		t:           t,
		loginStatus: http.StatusOK,
		token:       "token-1",
		awbStatus:   http.StatusOK,
		awbBody:     `{"response":[{"awbNumber":"x"}],"shipments":[{"awb":"2150000123"}]}`,
		labelStatus: http.StatusOK,
		labelType:   "application/pdf",
		labelBody:   "%PDF-1.4 label",
		trackStatus: http.StatusOK,
		trackBody:   `{"events":[]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", f.handleLogin)
	mux.HandleFunc("/intern-awb", f.authorized(f.handleAWB))
	mux.HandleFunc("/awb/label", f.authorized(f.handleLabel))
	mux.HandleFunc("/reports/awb/tracking", f.authorized(f.handleTracking))
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCourier) URL() string {
	return f.server.URL
}

func (f *fakeCourier) Logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func (f *fakeCourier) set(fn func(f *fakeCourier)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeCourier) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	f.mu.Lock()
	f.logins++
	delay := f.loginDelay
	status := f.loginStatus
	body := f.loginBody
	token := f.token
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != "" {
		io.WriteString(w, body)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   map[string]string{"token": token},
	})
}

func (f *fakeCourier) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		expected := "Bearer " + f.token
		f.mu.Unlock()

		if r.Header.Get("Authorization") != expected {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"Unauthenticated."}`)
			return
		}
		next(w, r)
	}
}

func (f *fakeCourier) handleAWB(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		f.t.Errorf("invalid AWB request body: %v", err)
	}

	f.mu.Lock()
	f.lastAWBReq = payload
	status, body := f.awbStatus, f.awbBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *fakeCourier) handleLabel(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastQuery = r.URL.Query()
	status, ctype, body := f.labelStatus, f.labelType, f.labelBody
	f.mu.Unlock()

	if ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *fakeCourier) handleTracking(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastQuery = r.URL.Query()
	status, body := f.trackStatus, f.trackBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// recordingMetrics captures courier request observations
type recordingMetrics struct {
	mu       sync.Mutex
	requests map[string][]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{requests: make(map[string][]int)}
}

func (m *recordingMetrics) CacheEvent(string) {}

func (m *recordingMetrics) CourierRequest(endpoint string, statusCode int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[endpoint] = append(m.requests[endpoint], statusCode)
}

// testClock is a manually advanced clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(f *fakeCourier, creds CredentialsSource, opts ...Option) *Service {
	opts = append([]Option{WithBaseURL(f.URL())}, opts...)
	return NewService(interfaces.Dependencies{HTTPClient: httpClient{}}, creds, opts...)
}
