package agents

import (
	"sync"
)

// Constructor builds a concrete agent from its configuration.
type Constructor func(deps Deps, cfg Config) (Agent, error)

// Registry maps agent types to constructors. Populated once at startup,
// read-only thereafter.
type Registry struct {
	mu           sync.RWMutex
	constructors map[AgentType]Constructor
}

// NewRegistry constructs an empty agent-type registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[AgentType]Constructor)}
}

// Register adds a constructor for an agent type. Registering the same
// type twice is an error.
func (r *Registry) Register(agentType AgentType, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[agentType]; exists {
		return NewAgentError(CodeInitializationFailed, "",
			"agent type "+string(agentType)+" already registered")
	}
	r.constructors[agentType] = ctor
	return nil
}

// Get retrieves the constructor for an agent type.
func (r *Registry) Get(agentType AgentType) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, ok := r.constructors[agentType]
	if !ok {
		return nil, NewAgentError(CodeAgentNotFound, "",
			"agent type "+string(agentType)+" is not registered")
	}
	return ctor, nil
}

// List returns the registered agent types.
func (r *Registry) List() []AgentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AgentType, 0, len(r.constructors))
	for t := range r.constructors {
		out = append(out, t)
	}
	return out
}
