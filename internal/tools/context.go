package tools

import (
	"context"

	"github.com/google/uuid"
)

type invocationKey struct{}

// Invocation captures request-scoped identifiers for tool telemetry.
type Invocation struct {
	UserID  uuid.UUID
	AgentID string
	RunID   string
	Symbol  string
}

// WithInvocation injects tool invocation metadata into a context.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFromContext extracts invocation metadata if present.
func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}
