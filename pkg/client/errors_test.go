package client

import (
	"errors"
	"io"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        io.ErrUnexpectedEOF,
			},
			expected: "search network error (status 0): request failed: unexpected EOF",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 400,
				ErrorClass: ErrorClassClient,
				Message:    "400 Bad Request",
				Body:       `{"error": {"code": "VALIDATION_ERROR"}}`,
			},
			expected: "search client error (status 400): 400 Bad Request",
		},
		{
			name: "rate limit error",
			apiError: &APIError{
				StatusCode: 429,
				ErrorClass: ErrorClassRateLimit,
				Message:    "429 Too Many Requests",
			},
			expected: "search rate_limit error (status 429): 429 Too Many Requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.apiError.Error(); result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	baseErr := errors.New("connection refused")
	apiErr := &APIError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        baseErr,
	}

	if !errors.Is(apiErr, baseErr) {
		t.Error("errors.Is should find the wrapped error")
	}

	var target *APIError
	if !errors.As(apiErr, &target) {
		t.Error("errors.As should match *APIError")
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "network", err: &APIError{ErrorClass: ErrorClassNetwork}, expected: true},
		{name: "server", err: &APIError{ErrorClass: ErrorClassServer, StatusCode: 503}, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsNetworkError(tt.err); result != tt.expected {
				t.Errorf("IsNetworkError() = %v, want %v", result, tt.expected)
			}
		})
	}
}
