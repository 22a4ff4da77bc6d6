package tools

import (
	"sync"

	"minerva/pkg/errors"
)

// Registry stores tools by name for discovery and lookup. Registration
// happens at process startup; lookups are concurrent and read-heavy.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Registering a name twice is an error.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "tool name is empty")
	}
	if _, exists := r.tools[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "tool %q already registered", name)
	}
	r.tools[name] = t
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tool %q is not registered", name)
	}
	return t, nil
}

// List returns the names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}

	return names
}

// ListByCategory returns all tools registered under the given category.
func (r *Registry) ListByCategory(category Category) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Tool
	for _, t := range r.tools {
		if t.Metadata().Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Select returns the tools matching the given names. Unknown names are
// reported as an error.
func (r *Registry) Select(names []string) ([]Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "tool %q is not registered", name)
		}
		out = append(out, t)
	}
	return out, nil
}
