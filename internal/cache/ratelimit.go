package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/ratelimit"
)

// rateLimitPrefix is the Redis key prefix for sliding-window buckets.
const rateLimitPrefix = "ratelimit:"

// slidingWindowScript prunes, checks and records in one atomic step.
// Scores are attempt times in milliseconds; members are unique per attempt.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local max = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local count = redis.call('ZCARD', key)

	if count >= max then
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry = window - (now - tonumber(oldest[2]))
		if retry < 0 then
			retry = 0
		end
		return {0, 0, retry}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)

	return {1, max - count - 1, 0}
`)

// RateLimiter is a ratelimit.Limiter shared by every API instance using the same Redis.
type RateLimiter struct {
	cache *Cache
	now   func() time.Time
}

// NewRateLimiter returns a Redis-backed sliding-window limiter.
func (c *Cache) NewRateLimiter() *RateLimiter {
	return &RateLimiter{cache: c, now: time.Now}
}

// Check implements ratelimit.Limiter. Redis errors are returned to the caller.
func (l *RateLimiter) Check(ctx context.Context, identifier string, maxAttempts int, window time.Duration) (ratelimit.Result, error) {
	if maxAttempts <= 0 || window <= 0 {
		return ratelimit.Result{}, ratelimit.ErrInvalidLimit
	}

	key := l.cache.key(rateLimitPrefix, hashKey(identifier))
	now := l.now().UnixMilli()

	out, err := slidingWindowScript.Run(ctx, l.cache.client,
		[]string{key},
		now, window.Milliseconds(), maxAttempts, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(out) != 3 {
		return ratelimit.Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(out))
	}

	return ratelimit.Result{
		Allowed:    out[0] == 1,
		Remaining:  int(out[1]),
		RetryAfter: time.Duration(out[2]) * time.Millisecond,
	}, nil
}
