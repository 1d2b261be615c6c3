package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript checks and records one hit atomically. Hits live in a
// sorted set scored by timestamp (ms); expired members are trimmed before
// counting. Returns {allowed, remaining, retry-after-ms}.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
local limit = tonumber(ARGV[3])
if count < limit then
	redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
	return {1, limit - count - 1, 0}
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local retry = 0
if oldest[2] then
	retry = tonumber(oldest[2]) + tonumber(ARGV[6]) - tonumber(ARGV[1])
end
return {0, 0, retry}
`)

// RedisLimiter shares the sliding window across instances through a sorted
// set per identifier.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed sliding-window limiter
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow records the request if the identifier is under its limit
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowMS := r.window.Milliseconds()
	argv := []any{
		now.UnixMilli(),
		now.Add(-r.window).UnixMilli(),
		r.limit,
		uuid.NewString(),
		windowMS,
		windowMS,
	}

	raw, err := slidingWindowScript.Run(ctx, r.client, []string{"ratelimit:" + key}, argv...).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(raw) != 3 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values, want 3", len(raw))
	}

	allowed, _ := raw[0].(int64)
	remaining, _ := raw[1].(int64)
	retryMS, _ := raw[2].(int64)

	return Decision{
		Allowed:    allowed == 1,
		Remaining:  int(remaining),
		RetryAfter: time.Duration(retryMS) * time.Millisecond,
	}, nil
}

// Ping checks the Redis connection
func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
