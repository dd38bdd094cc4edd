package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "error with cause",
			err: Wrap(KindNetwork, "request", "connection refused",
				errors.New("dial tcp: refused")),
			contains: []string{"[network:request]", "connection refused", "dial tcp"},
		},
		{
			name:     "error without cause",
			err:      New(KindValidation, "likePost", "post not found"),
			contains: []string{"[validation:likePost]", "post not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("error string %q does not contain %q", errStr, substr)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(KindStorage, "load", "wrapped", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Unwrap should return the original error")
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{
			name:     "direct error kind match",
			err:      New(KindTimeout, "request", "deadline exceeded"),
			kind:     KindTimeout,
			expected: true,
		},
		{
			name:     "wrapped error kind match",
			err:      Wrap(KindUnauthorized, "profile", "token rejected", errors.New("401")),
			kind:     KindUnauthorized,
			expected: true,
		},
		{
			name:     "error kind mismatch",
			err:      New(KindServer, "request", "internal error"),
			kind:     KindNetwork,
			expected: false,
		},
		{
			name:     "non-typed error",
			err:      errors.New("plain error"),
			kind:     KindNetwork,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsKind(tt.err, tt.kind)
			if result != tt.expected {
				t.Errorf("IsKind() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestRetryableAndStatus(t *testing.T) {
	err := New(KindServer, "request", "rate limited, try again later").
		WithStatus(429).
		AsRetryable()

	if !IsRetryable(err) {
		t.Error("expected retryable error")
	}
	if err.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, expected 429", err.HTTPStatus)
	}
	if KindOf(err) != KindServer {
		t.Errorf("KindOf() = %s, expected %s", KindOf(err), KindServer)
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors must not be retryable")
	}
}
