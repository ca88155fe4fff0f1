// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to HTTP errors and to inline result messages

package handlers

import (
	stderrors "errors"
	"net/http"

	"bluehand-admin-api/core/errors"

	"github.com/danielgtaylor/huma/v2"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsValidation(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsConfiguration(err):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.IsAuthentication(err):
		return huma.NewError(http.StatusBadGateway, "Courier authentication failed", err)
	case errors.IsQuotaExceeded(err):
		return huma.NewError(http.StatusInsufficientStorage, "Storage quota exceeded", err)
	}

	var apiErr *errors.ExternalAPIError
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= 500 || apiErr.StatusCode == 0:
			return huma.Error503ServiceUnavailable("External service error", err)
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return huma.Error429TooManyRequests("Rate limited by external service")
		case apiErr.StatusCode >= 400:
			return huma.Error400BadRequest("External service request error", err)
		default:
			return huma.Error500InternalServerError("Unexpected external service response", err)
		}
	}

	return huma.Error500InternalServerError("Internal server error", err)
}

// describeError splits an error into the message and details shown inline
// by the admin console
func describeError(err error) (message, details string) {
	var apiErr *errors.ExternalAPIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Message, apiErr.Details
	}
	var cfgErr *errors.ConfigurationError
	if stderrors.As(err, &cfgErr) {
		return cfgErr.Message, ""
	}
	return err.Error(), ""
}

// isClientSide reports errors caused by the request or local configuration
// rather than by the courier
func isClientSide(err error) bool {
	return errors.IsValidation(err) || errors.IsConfiguration(err) || errors.IsAuthentication(err)
}
