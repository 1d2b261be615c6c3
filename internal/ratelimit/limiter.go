// Package ratelimit implements a per-identifier sliding-window request
// limiter. Production deployments back it with Redis so the window is shared
// across instances; without Redis an in-memory limiter serves single-instance
// and development setups.
package ratelimit

import (
	"context"
	"time"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one limit check
type Decision struct {
	Allowed bool
	// Remaining requests in the current window
	Remaining int
	// RetryAfter is how long the caller should wait when denied
	RetryAfter time.Duration
}

// Limiter answers whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	// Ping reports whether the limiter backend is reachable
	Ping(ctx context.Context) error
	Close() error
}

// New picks the limiter backend from configuration. Redis when configured,
// in-memory otherwise.
func New(cfg config.RateLimitConfig, redisCfg config.RedisConfig, logger *errors.Logger) (Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if redisCfg.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
				"Failed to connect to redis for rate limiting", err)
		}
		logger.Info("Rate limiter using redis backend",
			"addr", redisCfg.Addr,
			"limit", cfg.RequestsPerWindow,
			"window", cfg.Window)
		return NewRedisLimiter(client, cfg.RequestsPerWindow, cfg.Window), nil
	}

	logger.Info("Rate limiter using in-memory backend",
		"limit", cfg.RequestsPerWindow,
		"window", cfg.Window)
	return NewMemoryLimiter(cfg.RequestsPerWindow, cfg.Window), nil
}
