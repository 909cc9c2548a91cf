package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited reports an exhausted window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds the submission budget.
type Config struct {
	// MaxSubmissions is the number of submissions allowed per window.
	MaxSubmissions int
	Window         time.Duration
	Prefix         string
}

// Limiter counts submissions per scope and client.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns a limiter over redisClient. Zero fields of cfg fall back to
// 30 submissions per minute under the "gf:rl" prefix.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxSubmissions <= 0 {
		cfg.MaxSubmissions = 30
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "gf:rl"
	}
	return &Limiter{redis: redisClient, config: cfg}
}

// Allow records one submission for client in scope. It returns
// ErrRateLimited with the time left in the window once the budget is spent.
func (l *Limiter) Allow(ctx context.Context, scope, client string) (time.Duration, error) {
	if l == nil || client == "" {
		return 0, nil
	}
	key := l.key(scope, client)

	count, err := l.incrementWithTTL(ctx, key)
	if err != nil {
		return 0, err
	}
	if count <= int64(l.config.MaxSubmissions) {
		return 0, nil
	}

	ttl, err := l.redis.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.config.Window
	}
	return ttl, ErrRateLimited
}

// Reset clears the counter of client in scope.
func (l *Limiter) Reset(ctx context.Context, scope, client string) error {
	if l == nil {
		return nil
	}
	if err := l.redis.Del(ctx, l.key(scope, client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) key(scope, client string) string {
	return l.config.Prefix + ":" + scope + ":" + client
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: only the first hit sets the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
