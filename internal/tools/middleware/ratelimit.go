package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"minerva/internal/tools"
	"minerva/pkg/errors"
)

// RateLimitMiddleware throttles tool execution using the rate limit
// declared in the tool's metadata. Tools without a rate limit pass through.
type RateLimitMiddleware struct{}

// Wrap applies a token bucket limiter derived from metadata.
func (RateLimitMiddleware) Wrap(t tools.Tool) tools.Tool {
	rl := t.Metadata().RateLimit
	if rl == nil || rl.Requests <= 0 || rl.Window <= 0 {
		return t
	}

	rps := float64(rl.Requests) / rl.Window.Seconds()
	limiter := rate.NewLimiter(rate.Limit(rps), rl.Requests)

	return tools.New(t.Metadata(), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "tool %s: %v", t.Name(), err)
		}
		return t.Execute(ctx, args)
	})
}
