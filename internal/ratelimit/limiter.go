package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when a counter has exhausted its window budget.
var ErrRateLimited = errors.New("rate limited")

// ErrUnavailable wraps Redis faults.
var ErrUnavailable = errors.New("rate limiter unavailable")

// Rule is a fixed-window budget.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Config holds the budgets for each throttled action.
type Config struct {
	LoginFailures Rule
	OTPRequests   Rule
}

// Limiter counts attempts per role and identifier in Redis. Counters are keyed
// by the submitted identifier, never by account id, so throttling behaves the
// same whether or not the account exists.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
	prefix string
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: redisClient, config: cfg, prefix: "mpa"}
}

// CheckLogin reports ErrRateLimited once too many failed logins were recorded.
func (l *Limiter) CheckLogin(ctx context.Context, role, email string) error {
	return l.check(ctx, l.key("login", role, email), l.config.LoginFailures.Limit)
}

// RecordLoginFailure counts one failed login.
func (l *Limiter) RecordLoginFailure(ctx context.Context, role, email string) error {
	_, err := l.increment(ctx, l.key("login", role, email), l.config.LoginFailures.Window)
	return err
}

// ResetLogin clears the failure counter after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, role, email string) error {
	if err := l.redis.Del(ctx, l.key("login", role, email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// AllowOTPRequest counts one OTP request for the purpose and reports
// ErrRateLimited when the budget is exceeded.
func (l *Limiter) AllowOTPRequest(ctx context.Context, purpose, role, email string) error {
	count, err := l.increment(ctx, l.key("otp:"+purpose, role, email), l.config.OTPRequests.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.OTPRequests.Limit) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) check(ctx context.Context, key string, limit int) error {
	if limit <= 0 {
		return nil
	}
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count >= int64(limit) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// The window opens with the first hit and is not extended by later ones.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return count, nil
}

func (l *Limiter) key(action, role, identifier string) string {
	return l.prefix + ":" + action + ":" + role + ":" + strings.ToLower(strings.TrimSpace(identifier))
}
