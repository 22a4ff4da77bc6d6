package shared

import (
	"time"

	"minerva/internal/tools"
	"minerva/internal/tools/middleware"
)

// ToolBuilder provides a fluent API for creating tools with middleware.
type ToolBuilder struct {
	meta tools.Metadata
	fn   tools.HandlerFunc
	deps Deps

	withRetry   bool
	retryConfig middleware.RetryMiddleware

	withTimeout   bool
	timeoutConfig middleware.TimeoutMiddleware

	withStats bool
}

// NewToolBuilder creates a builder for a tool.
func NewToolBuilder(meta tools.Metadata, fn tools.HandlerFunc, deps Deps) *ToolBuilder {
	return &ToolBuilder{
		meta: meta,
		fn:   fn,
		deps: deps,
		// Default configs
		retryConfig:   middleware.RetryMiddleware{Attempts: 3, Backoff: 500 * time.Millisecond},
		timeoutConfig: middleware.TimeoutMiddleware{Timeout: 30 * time.Second},
	}
}

// WithRetry enables retry middleware.
func (b *ToolBuilder) WithRetry(attempts int, backoff time.Duration) *ToolBuilder {
	b.withRetry = true
	b.retryConfig = middleware.RetryMiddleware{
		Attempts: attempts,
		Backoff:  backoff,
	}
	return b
}

// WithTimeout enables timeout middleware.
func (b *ToolBuilder) WithTimeout(timeout time.Duration) *ToolBuilder {
	b.withTimeout = true
	b.timeoutConfig = middleware.TimeoutMiddleware{
		Timeout: timeout,
	}
	return b
}

// WithStats enables stats tracking middleware.
func (b *ToolBuilder) WithStats() *ToolBuilder {
	b.withStats = true
	return b
}

// Build creates the tool with configured middleware applied.
// Order, innermost first: retry, timeout, rate limit, stats.
func (b *ToolBuilder) Build() tools.Tool {
	t := tools.New(b.meta, b.fn)

	if b.withRetry {
		t = b.retryConfig.Wrap(t)
	}
	if b.withTimeout {
		t = b.timeoutConfig.Wrap(t)
	}

	t = middleware.RateLimitMiddleware{}.Wrap(t)

	if b.withStats && b.deps.StatsRepo != nil {
		t = middleware.NewStatsMiddleware(b.deps.StatsRepo).Wrap(t)
	}

	return t
}
