package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ProviderError represents a general provider error.
// It includes the provider name, HTTP status code, and underlying error.
// Message never carries the raw response body.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403).
type AuthError struct {
	// Provider is the name of the provider that rejected authentication
	Provider string

	// StatusCode is the HTTP status code
	StatusCode int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed (status %d)", e.Provider, e.StatusCode)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It includes the retry-after duration if provided by the provider.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration the provider asked callers to wait
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s)", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("provider %q rate limit exceeded", e.Provider)
}

// TimeoutError represents a request that exceeded its deadline.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError represents a response parsing failure.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NoImageError is returned when a well-formed response carries no image.
type NoImageError struct {
	// Provider is the name of the provider
	Provider string

	// Reason is the provider's finish or filter reason, if any
	Reason string
}

// Error implements the error interface.
func (e *NoImageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("provider %q returned no image (%s)", e.Provider, e.Reason)
	}
	return fmt.Sprintf("provider %q returned no image", e.Provider)
}

// ConfigError represents a provider configuration error.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// Failure converts an adapter error into a failed output with a safe message.
// It is the single place where provider errors cross the adapter boundary.
func Failure(provider string, err error) *GenerateOutput {
	code, msg := Classify(err)
	return &GenerateOutput{
		OK:               false,
		ErrorCode:        code,
		ErrorMessageSafe: fmt.Sprintf("%s: %s", provider, msg),
	}
}

// Classify maps an error to an output code and a message built only from
// status codes and fixed text.
func Classify(err error) (code string, message string) {
	var (
		timeoutErr  *TimeoutError
		authErr     *AuthError
		rateErr     *RateLimitError
		parseErr    *ParseError
		noImageErr  *NoImageError
		providerErr *ProviderError
	)

	switch {
	case err == nil:
		return CodeProviderError, "provider failed without an error"
	case errors.As(err, &timeoutErr):
		return CodeProviderTimeout, fmt.Sprintf("provider did not respond within %s", timeoutErr.Timeout)
	case errors.Is(err, context.DeadlineExceeded):
		return CodeProviderTimeout, "provider did not respond before the deadline"
	case errors.Is(err, context.Canceled):
		return CodeProviderError, "provider call cancelled"
	case errors.As(err, &authErr):
		return CodeProviderHTTPError, fmt.Sprintf("provider rejected credentials (HTTP %d)", authErr.StatusCode)
	case errors.As(err, &rateErr):
		return CodeProviderHTTPError, "provider rate limited the request (HTTP 429)"
	case errors.As(err, &parseErr):
		return CodeProviderBadResponse, "provider returned a malformed response"
	case errors.As(err, &noImageErr):
		if noImageErr.Reason != "" {
			return CodeNoImageReturned, "provider returned no image: " + noImageErr.Reason
		}
		return CodeNoImageReturned, "provider returned no image"
	case errors.As(err, &providerErr) && providerErr.StatusCode > 0:
		return CodeProviderHTTPError, fmt.Sprintf("provider returned HTTP %d %s",
			providerErr.StatusCode, http.StatusText(providerErr.StatusCode))
	default:
		return CodeProviderError, "provider request failed"
	}
}
