package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	tberrors "tailorbase/internal/errors"

	"google.golang.org/api/googleapi"
)

type fakeNetError struct{ timeout bool }

func (e *fakeNetError) Error() string   { return "network unreachable" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"network timeout", &fakeNetError{timeout: true}, true},
		{"connection refused", &fakeNetError{timeout: false}, true},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"bad gateway", &googleapi.Error{Code: http.StatusBadGateway}, true},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"gateway timeout", &googleapi.Error{Code: http.StatusGatewayTimeout}, true},
		{"unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, false},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped retryable", fmt.Errorf("call failed: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryAfterHint(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{"no header", http.Header{}, 0},
		{"seconds", http.Header{"Retry-After": []string{"7"}}, 7 * time.Second},
		{"zero seconds", http.Header{"Retry-After": []string{"0"}}, 0},
		{"garbage", http.Header{"Retry-After": []string{"soon"}}, 0},
		{"past date", http.Header{"Retry-After": []string{"Mon, 02 Jan 2006 15:04:05 GMT"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &googleapi.Error{Code: http.StatusTooManyRequests, Header: tt.header}
			if got := retryAfterHint(err); got != tt.want {
				t.Errorf("retryAfterHint = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("future date", func(t *testing.T) {
		future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
		err := &googleapi.Error{
			Code:   http.StatusTooManyRequests,
			Header: http.Header{"Retry-After": []string{future}},
		}
		got := retryAfterHint(err)
		if got <= 0 || got > 31*time.Second {
			t.Errorf("retryAfterHint for future date = %v, want ~30s", got)
		}
	})

	t.Run("non-api error", func(t *testing.T) {
		if got := retryAfterHint(errors.New("boom")); got != 0 {
			t.Errorf("retryAfterHint = %v, want 0", got)
		}
	})
}

func TestBackoffDelay(t *testing.T) {
	// attempt 1 bases at 1s, attempt 2 at 2s, jitter adds at most 10%
	for attempt, base := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second} {
		got := backoffDelay(attempt, 0)
		maxExpected := base + time.Duration(float64(base)*0.1)
		if got < base || got > maxExpected {
			t.Errorf("backoffDelay(%d, 0) = %v, want [%v, %v]", attempt, got, base, maxExpected)
		}
	}

	t.Run("hint wins when longer", func(t *testing.T) {
		got := backoffDelay(1, 10*time.Second)
		if got != 10*time.Second {
			t.Errorf("backoffDelay with 10s hint = %v, want 10s", got)
		}
	})

	t.Run("capped at max", func(t *testing.T) {
		if got := backoffDelay(10, 0); got > maxBackoff {
			t.Errorf("backoffDelay(10, 0) = %v, exceeds cap %v", got, maxBackoff)
		}
		if got := backoffDelay(1, 5*time.Minute); got > maxBackoff {
			t.Errorf("backoffDelay with 5m hint = %v, exceeds cap %v", got, maxBackoff)
		}
	})
}

func TestClassifyUpstreamError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"quota", &googleapi.Error{Code: http.StatusTooManyRequests}, tberrors.ErrCodeAIQuotaExceeded},
		{"unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, tberrors.ErrCodeAIUnauthorized},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, tberrors.ErrCodeAIUnauthorized},
		{"timeout", context.DeadlineExceeded, tberrors.ErrCodeAITimeout},
		{"generic", errors.New("boom"), tberrors.ErrCodeAIServiceFailed},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, tberrors.ErrCodeAIServiceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := classifyUpstreamError("tailor", tt.err)
			if appErr.Code != tt.wantCode {
				t.Errorf("classifyUpstreamError code = %q, want %q", appErr.Code, tt.wantCode)
			}
			if !errors.Is(appErr, tt.err) {
				t.Error("classified error should wrap the cause")
			}
		})
	}
}
