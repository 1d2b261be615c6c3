package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "validation error maps to 400",
			err:      NewValidationError(ErrCodeInvalidRequest, "bad payload", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "not found maps to 404",
			err:      NewNotFoundError(ErrCodeNotFound, "resume not found", nil),
			expected: http.StatusNotFound,
		},
		{
			name:     "auth error maps to 401",
			err:      NewAuthError(ErrCodeUnauthorized, "missing api key", nil),
			expected: http.StatusUnauthorized,
		},
		{
			name:     "conflict maps to 409",
			err:      NewConflictError(ErrCodeDuplicate, "email already registered", nil),
			expected: http.StatusConflict,
		},
		{
			name:     "rate limit maps to 429",
			err:      NewRateLimitError(ErrCodeRateLimited, "too many requests", nil),
			expected: http.StatusTooManyRequests,
		},
		{
			name:     "generic AI failure maps to 503",
			err:      NewAIError(ErrCodeAIServiceFailed, "upstream unavailable", nil),
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "AI quota exceeded maps to 429",
			err:      NewAIError(ErrCodeAIQuotaExceeded, "quota exhausted", nil),
			expected: http.StatusTooManyRequests,
		},
		{
			name:     "AI unauthorized maps to 401",
			err:      NewAIError(ErrCodeAIUnauthorized, "invalid upstream key", nil),
			expected: http.StatusUnauthorized,
		},
		{
			name:     "storage error maps to 500",
			err:      NewStorageError(ErrCodeStorageFailed, "insert failed", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "plain error maps to 500",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "wrapped app error keeps its mapping",
			err:      fmt.Errorf("handler: %w", NewNotFoundError(ErrCodeNotFound, "job not found", nil)),
			expected: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.expected {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	appErr := NewAIError(ErrCodeAITimeout, "deadline exceeded", errors.New("context deadline exceeded"))
	if got := ErrorCode(appErr); got != ErrCodeAITimeout {
		t.Errorf("ErrorCode() = %q, want %q", got, ErrCodeAITimeout)
	}
	if got := ErrorCode(errors.New("boom")); got != "UNKNOWN" {
		t.Errorf("ErrorCode() = %q, want UNKNOWN", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewStorageError(ErrCodeStorageFailed, "query failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() != "STORAGE_FAILED: query failed (caused by: root cause)" {
		t.Errorf("unexpected Error() output: %s", err.Error())
	}
}
