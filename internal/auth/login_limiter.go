package auth

import (
	"context"
	"strings"
	"time"

	"roomrental/internal/cache"
)

const loginFailureKeyPrefix = "login_failures:"

// LoginLimiter tracks failed sign-in attempts per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) bool
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

type redisLoginLimiter struct {
	cache       *cache.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter allows maxAttempts failures per email within window.
// When redis is unavailable every attempt is allowed.
func NewLoginLimiter(cache *cache.Client, maxAttempts int, window time.Duration) LoginLimiter {
	return &redisLoginLimiter{cache: cache, maxAttempts: maxAttempts, window: window}
}

func (l *redisLoginLimiter) key(email string) string {
	return loginFailureKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (l *redisLoginLimiter) Allow(ctx context.Context, email string) bool {
	if l.maxAttempts <= 0 {
		return true
	}
	n, _ := l.cache.Count(ctx, l.key(email))
	return n < int64(l.maxAttempts)
}

func (l *redisLoginLimiter) RecordFailure(ctx context.Context, email string) {
	_, _ = l.cache.Incr(ctx, l.key(email), l.window)
}

func (l *redisLoginLimiter) Reset(ctx context.Context, email string) {
	_ = l.cache.Delete(ctx, l.key(email))
}
