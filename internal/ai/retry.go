package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"time"

	tberrors "tailorbase/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

// isRetryableError reports whether an upstream error is worth retrying.
// Timeouts, connection failures and 429/5xx responses retry; auth and
// invalid-input errors do not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// retryAfterHint extracts the server-requested delay from a 429/503 response,
// or zero when none was sent.
func retryAfterHint(err error) time.Duration {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Header == nil {
		return 0
	}

	value := apiErr.Header.Get("Retry-After")
	if value == "" {
		return 0
	}

	// Retry-After is either delay-seconds or an HTTP date
	if seconds, convErr := strconv.Atoi(value); convErr == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, parseErr := http.ParseTime(value); parseErr == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// classifyUpstreamError maps an upstream failure to an AppError whose code
// drives the API error responses (429 for quota, 401 for bad credentials,
// 503 otherwise).
func classifyUpstreamError(operation string, err error) *tberrors.AppError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return tberrors.NewAIError(tberrors.ErrCodeAIQuotaExceeded,
				"Upstream AI quota exceeded for "+operation, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return tberrors.NewAIError(tberrors.ErrCodeAIUnauthorized,
				"Upstream AI rejected credentials for "+operation, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return tberrors.NewAIError(tberrors.ErrCodeAITimeout,
			"AI operation timed out for "+operation, err)
	}

	return tberrors.NewAIError(tberrors.ErrCodeAIServiceFailed,
		"AI operation failed for "+operation, err)
}

// backoffDelay computes the exponential backoff for the given attempt (1-based)
// with random jitter to prevent thundering herd. A server Retry-After hint
// wins over the computed delay when it is longer.
func backoffDelay(attempt int, hint time.Duration) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second

	jitterMax := big.NewInt(int64(float64(base) * 0.1))
	var jitter time.Duration
	if jitterMax.Sign() > 0 {
		if j, err := rand.Int(rand.Reader, jitterMax); err == nil {
			jitter = time.Duration(j.Int64())
		}
	}

	delay := min(base+jitter, maxBackoff)
	if hint > delay {
		delay = min(hint, maxBackoff)
	}
	return delay
}

// executeWithRetry runs fn with exponential backoff until it succeeds, the
// error is not retryable, or the retry budget is exhausted.
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoffDelay(attempt, retryAfterHint(lastErr))):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, lastErr
}
