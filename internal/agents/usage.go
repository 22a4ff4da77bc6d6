package agents

import (
	"context"

	"minerva/internal/domain/ai_usage"
)

// RunInfo identifies the workflow run an LLM call belongs to.
type RunInfo struct {
	RunID      string
	StrategyID string
	Workflow   string
}

type runInfoKey struct{}

// WithRunInfo attaches run identity to the context so usage records can
// be attributed without threading identifiers through every agent call.
func WithRunInfo(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, info)
}

// RunInfoFrom extracts run identity from the context, zero value when absent.
func RunInfoFrom(ctx context.Context) RunInfo {
	info, _ := ctx.Value(runInfoKey{}).(RunInfo)
	return info
}

// UsageRecorder receives one record per model invocation.
type UsageRecorder interface {
	Store(ctx context.Context, log *ai_usage.UsageLog) error
}
