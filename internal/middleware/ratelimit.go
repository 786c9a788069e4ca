// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"spatialintel/internal/logger"
	"spatialintel/internal/metrics"
)

// Limiter decides whether one more request fits in the current second
type Limiter interface {
	Allow(ctx context.Context) (bool, error)
}

// TokenBucket refills to capacity at the start of every second.
// Excess requests are rejected, not queued.
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

// NewTokenBucket creates a bucket allowing perSecond requests per second
func NewTokenBucket(perSecond int) *TokenBucket {
	return &TokenBucket{
		capacity: perSecond,
		tokens:   perSecond,
		lastSec:  time.Now().Unix(),
		now:      time.Now,
	}
}

// Allow takes one token if available
func (tb *TokenBucket) Allow(ctx context.Context) (bool, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true, nil
	}
	return false, nil
}

// RedisLimiter is a fixed one-second window counter shared by every replica
type RedisLimiter struct {
	client    *redis.Client
	perSecond int
	prefix    string
	now       func() time.Time
}

// NewRedisLimiter creates a limiter keyed under prefix
func NewRedisLimiter(client *redis.Client, prefix string, perSecond int) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		perSecond: perSecond,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Allow increments the counter of the current second
func (l *RedisLimiter) Allow(ctx context.Context) (bool, error) {
	key := fmt.Sprintf("%s:%d", l.prefix, l.now().Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("error incrementing rate limit counter: %w", err)
	}

	return incr.Val() <= int64(l.perSecond), nil
}

// RateLimit rejects requests beyond the limiter's budget with 429.
// A failing limiter lets the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context())
			if err != nil {
				logger.L().Warn("rate_limit_unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
