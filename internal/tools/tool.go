package tools

import (
	"context"

	"minerva/pkg/errors"
)

// Tool represents a callable capability exposed to agents.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// Metadata returns registration metadata for discovery.
	Metadata() Metadata
	// Execute performs the tool's action using the provided arguments.
	Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	meta    Metadata
	handler HandlerFunc
}

// New creates a new function-backed Tool.
func New(meta Metadata, handler HandlerFunc) Tool {
	return &FunctionTool{
		meta:    meta,
		handler: handler,
	}
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.meta.Name }

// Description returns a human description of the tool.
func (t *FunctionTool) Description() string { return t.meta.Description }

// Metadata returns the tool's registration metadata.
func (t *FunctionTool) Metadata() Metadata { return t.meta }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	if t.handler == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "tool %s has no handler", t.meta.Name)
	}

	return t.handler(ctx, args)
}
