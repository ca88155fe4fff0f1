// ABOUTME: FAN Courier login with a cached bearer token
// ABOUTME: Concurrent callers share one login through singleflight

package courier

import (
	"context"
	"net/http"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"

	"github.com/tidwall/gjson"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate returns a valid bearer token, logging in when none is cached
// or the cached one has expired. Concurrent callers share a single login,
// which is not cancelled with any one caller's context; each caller stops
// waiting when its own context ends.
func (s *Service) Authenticate(ctx context.Context) (string, error) {
	if token, ok := s.cachedToken(); ok {
		return token, nil
	}

	loginCtx := context.WithoutCancel(ctx)
	ch := s.logins.DoChan("login", func() (interface{}, error) {
		if token, ok := s.cachedToken(); ok {
			return token, nil
		}
		return s.login(loginCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) cachedToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || !s.now().Before(s.expiry) {
		return "", false
	}
	return s.token, true
}

func (s *Service) login(ctx context.Context) (string, error) {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if !creds.HasLogin() {
		return "", &errors.ConfigurationError{
			Setting: domain.FanCourierSettingsKey,
			Message: "FAN Courier username and password are required",
		}
	}

	resp, err := s.call(ctx, "login", http.MethodPost, "/login", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, false)
	if err != nil {
		return "", &errors.AuthenticationError{Message: "login request failed", Cause: err}
	}

	if !resp.ok() {
		message := upstreamMessage(resp.body)
		if message == "" {
			message = http.StatusText(resp.statusCode)
		}
		s.logger.Error("FAN Courier login rejected", map[string]interface{}{
			"status": resp.statusCode,
			"error":  message,
		})
		return "", &errors.AuthenticationError{StatusCode: resp.statusCode, Message: message}
	}

	token := gjson.GetBytes(resp.body, "token").String()
	if token == "" {
		token = gjson.GetBytes(resp.body, "data.token").String()
	}
	if token == "" {
		return "", &errors.AuthenticationError{
			StatusCode: resp.statusCode,
			Message:    "login response did not include a token",
		}
	}

	s.mu.Lock()
	s.token = token
	s.expiry = s.now().Add(s.tokenLifetime)
	expiry := s.expiry
	s.mu.Unlock()

	s.logger.Info("Authenticated with FAN Courier", map[string]interface{}{
		"expires_at": expiry,
	})
	return token, nil
}
