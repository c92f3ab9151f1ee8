package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateLimiter implements fixed-window rate limiting in Redis so limits
// are shared across instances
type RedisRateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
	prefix string
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(redisClient *redis.Client, config *RateLimitConfig, prefix string) *RedisRateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if prefix == "" {
		prefix = "coffeeshop:ratelimit"
	}

	return &RedisRateLimiter{
		redis:  redisClient,
		config: config,
		prefix: prefix,
	}
}

// Allow increments the caller's counter for the current window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rl.redisKey(key)

	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	// the first request in a window starts its expiry
	if count == 1 {
		if err := rl.redis.Expire(ctx, redisKey, rl.config.WindowDuration).Err(); err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}
	}

	return count <= int64(rl.config.RequestsPerWindow+rl.config.BurstSize), nil
}

// Limit returns the requests allowed per window
func (rl *RedisRateLimiter) Limit() int { return rl.config.RequestsPerWindow }

// Window returns the window length
func (rl *RedisRateLimiter) Window() time.Duration { return rl.config.WindowDuration }

// Ping verifies Redis connectivity
func (rl *RedisRateLimiter) Ping(ctx context.Context) error {
	return rl.redis.Ping(ctx).Err()
}

func (rl *RedisRateLimiter) redisKey(key string) string {
	return rl.prefix + ":" + key
}
