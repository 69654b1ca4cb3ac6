package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per identity.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix + ":ratelimit:",
		limit:  limit,
		window: window,
	}
}

// Allow counts one request for identity. When the limit is exceeded it
// returns false and the time left until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, identity string) (bool, time.Duration, error) {
	if identity == "" {
		identity = "anonymous"
	}
	key := l.prefix + identity

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set window: %w", err)
		}
	}

	if count <= int64(l.limit) {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read window: %w", err)
	}
	if ttl < 0 {
		// lost expiry, start a new window
		l.client.Expire(ctx, key, l.window)
		ttl = l.window
	}
	return false, ttl, nil
}

func (l *RateLimiter) Reset(ctx context.Context, identity string) error {
	return l.client.Del(ctx, l.prefix+identity).Err()
}
