// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for courier, settings and storage failures

package errors

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned by storage backends when a write would exceed
// the available capacity.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string

	// Details carries the raw upstream response body, if any
	Details string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// ConfigurationError is returned when a required setting is missing.
// It is detected before any network call is made.
type ConfigurationError struct {
	Setting string
	Message string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
}

// AuthenticationError is returned when the courier login fails
type AuthenticationError struct {
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed: %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Unwrap returns the underlying cause
func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsQuotaExceeded checks if an error signals exhausted storage capacity
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
