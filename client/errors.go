package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is()
var (
	// ErrNotFound indicates the requested resource was not found (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates insufficient permissions (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid request parameters (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates a resource conflict, e.g. an existing enrollment (HTTP 409).
	ErrConflict = errors.New("resource conflict")

	// ErrUnprocessableEntity indicates semantic validation failure (HTTP 422).
	ErrUnprocessableEntity = errors.New("unprocessable entity")

	// ErrRateLimited indicates too many requests (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError = errors.New("server error")

	// ErrTimeout indicates a call exceeded the per-call timeout.
	ErrTimeout = errors.New("timeout")

	// ErrProtocol indicates a success response that could not be decoded.
	ErrProtocol = errors.New("protocol error")

	// ErrAuthenticationFailed indicates the credential exchange was rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidInput indicates validation failure for input parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError represents a non-2xx response from the platform API.
// It is data for the caller, not exceptional control flow.
type APIError struct {
	StatusCode int    // HTTP status code, 0 when Timeout is set
	Message    string // Error message from API
	Code       string // Error code from API (if available)
	RequestID  string // Request ID sent in X-Request-Id
	Body       []byte // Raw response body
	Timeout    bool   // Call exceeded the per-call timeout
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Timeout {
		return "docebo api error (status timeout): " + e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("docebo api error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("docebo api error (status %d): %s", e.StatusCode, e.Message)
}

// Is implements errors.Is() for comparing with sentinel errors.
func (e *APIError) Is(target error) bool {
	if e.Timeout {
		return target == ErrTimeout
	}
	switch e.StatusCode {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 403:
		return target == ErrForbidden
	case 404:
		return target == ErrNotFound
	case 408:
		return target == ErrTimeout
	case 409:
		return target == ErrConflict
	case 422:
		return target == ErrUnprocessableEntity
	case 429:
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return target == ErrServerError
	}
	return false
}

// Unwrap returns nil as APIError doesn't wrap other errors.
func (e *APIError) Unwrap() error {
	return nil
}

// ProtocolError reports a 2xx response whose body is not the expected JSON.
type ProtocolError struct {
	StatusCode int
	Preview    string // truncated body
	Err        error  // decode error, if any
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docebo protocol error (status %d): %v: %s", e.StatusCode, e.Err, e.Preview)
	}
	return fmt.Sprintf("docebo protocol error (status %d): expected JSON response but got: %s", e.StatusCode, e.Preview)
}

// Is implements errors.Is() for comparing with ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// Unwrap returns the underlying decode error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a failed credential exchange.
type AuthenticationError struct {
	StatusCode int // 0 when the exchange failed below HTTP
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
	}
	return "authentication failed: " + e.Message
}

// Is implements errors.Is() for comparing with ErrAuthenticationFailed.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}

// Unwrap returns the underlying exchange error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Validation error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is() for comparing with ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap returns ErrInvalidInput for error chain.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// newAPIErrorFromResponse creates an APIError with JSON parsing support.
// The platform reports errors as {"message": ...} or {"message": [...], "name": ...}.
func newAPIErrorFromResponse(statusCode int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    string(body),
		RequestID:  requestID,
		Body:       body,
	}

	var errResp struct {
		Message json.RawMessage `json:"message"`
		Name    string          `json:"name"`
		Code    string          `json:"code"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if msg := decodeMessage(errResp.Message); msg != "" {
			apiErr.Message = msg
		}
		apiErr.Code = errResp.Code
		if apiErr.Code == "" {
			apiErr.Code = errResp.Name
		}
	}

	return apiErr
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// isRetryableStatus returns true if the HTTP status code is retryable.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	}
	return false
}
