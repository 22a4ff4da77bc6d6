package ai

import (
	"context"
	"sync"

	"minerva/pkg/errors"
)

// ProviderRegistry holds the configured chat providers keyed by name.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]ChatProvider
	// modelIndex maps model name to owning provider for resolution.
	modelIndex map[string]string
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers:  make(map[string]ChatProvider),
		modelIndex: make(map[string]string),
	}
}

// Register adds a provider. Registering the same name twice is an error.
func (r *ProviderRegistry) Register(p ChatProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "provider %q already registered", name)
	}
	r.providers[name] = p

	models, err := p.ListModels(context.Background())
	if err == nil {
		for _, m := range models {
			if _, taken := r.modelIndex[m.Name]; !taken {
				r.modelIndex[m.Name] = name
			}
		}
	}
	return nil
}

// Get returns the provider registered under name.
func (r *ProviderRegistry) Get(name string) (ChatProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "provider %q is not registered", name)
	}
	return p, nil
}

// List returns the names of all registered providers.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// ResolveModel returns the provider that serves the given model name.
func (r *ProviderRegistry) ResolveModel(model string) (ChatProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.modelIndex[model]
	if !ok {
		return nil, errors.Wrapf(errors.ErrModelNotFound, "no provider serves model %q", model)
	}
	return r.providers[name], nil
}
