package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status int
		target error
		want   bool
	}{
		{400, ErrBadRequest, true},
		{401, ErrUnauthorized, true},
		{403, ErrForbidden, true},
		{404, ErrNotFound, true},
		{408, ErrTimeout, true},
		{409, ErrConflict, true},
		{422, ErrUnprocessableEntity, true},
		{429, ErrRateLimited, true},
		{500, ErrServerError, true},
		{503, ErrServerError, true},
		{404, ErrServerError, false},
		{418, ErrBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%v", tt.status, tt.target), func(t *testing.T) {
			err := error(&APIError{StatusCode: tt.status})
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%d, %v) = %v, want %v", tt.status, tt.target, got, tt.want)
			}
		})
	}
}

func TestAPIError_Timeout(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &APIError{Timeout: true, Message: "no response within 30s"})
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected timeout error to match ErrTimeout")
	}
	if errors.Is(err, ErrServerError) {
		t.Error("timeout should not match ErrServerError")
	}
	want := "wrapped: docebo api error (status timeout): no response within 30s"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewAPIErrorFromResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "string message",
			body:        `{"message":"Course not found"}`,
			wantMessage: "Course not found",
		},
		{
			name:        "list message with name",
			body:        `{"message":["Invalid user id","other"],"name":"Bad Request"}`,
			wantMessage: "Invalid user id",
			wantCode:    "Bad Request",
		},
		{
			name:        "code wins over name",
			body:        `{"message":"x","name":"n","code":"c"}`,
			wantMessage: "x",
			wantCode:    "c",
		},
		{
			name:        "non json body",
			body:        "gateway exploded",
			wantMessage: "gateway exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIErrorFromResponse(400, []byte(tt.body), "req-1")
			if err.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMessage)
			}
			if err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", err.Code, tt.wantCode)
			}
			if err.RequestID != "req-1" {
				t.Errorf("RequestID = %q", err.RequestID)
			}
		})
	}
}

func TestProtocolError(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	err := newProtocolError(200, long, nil)
	if len(err.Preview) != 203 {
		t.Errorf("preview length = %d, want 203", len(err.Preview))
	}
	if !errors.Is(err, ErrProtocol) {
		t.Error("expected ErrProtocol")
	}

	inner := errors.New("unexpected end of JSON input")
	wrapped := newProtocolError(200, []byte("{"), inner)
	if !errors.Is(wrapped, inner) {
		t.Error("expected decode error in chain")
	}
}

func TestAuthenticationError(t *testing.T) {
	err := &AuthenticationError{StatusCode: 401, Message: "invalid_grant"}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Error("expected ErrAuthenticationFailed")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("credential rejection must stay distinct from a 401 API response")
	}
	if got := (&AuthenticationError{Message: "dial tcp: refused"}).Error(); got != "authentication failed: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "id", Message: "cannot be empty"}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected ErrInvalidInput")
	}
	if err.Error() != "validation error: id: cannot be empty" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !isRetryableStatus(code) {
			t.Errorf("%d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 403, 404, 409, 422, 501} {
		if isRetryableStatus(code) {
			t.Errorf("%d should not be retryable", code)
		}
	}
}
