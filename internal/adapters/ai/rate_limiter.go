package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound requests to a provider.
type RateLimiter interface {
	// Wait blocks until a request is permitted or the context is done.
	Wait(ctx context.Context) error

	// Allow reports whether a request may proceed immediately.
	Allow() bool

	// Limit returns the configured requests-per-second limit.
	Limit() float64
}

type tokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket limiter with the given
// requests-per-second rate and burst size.
func NewRateLimiter(rps float64, burst int) RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &tokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (l *tokenBucketLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

func (l *tokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

func (l *tokenBucketLimiter) Limit() float64 {
	return float64(l.limiter.Limit())
}
