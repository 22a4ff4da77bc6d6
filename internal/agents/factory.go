package agents

import (
	"sync"

	"minerva/internal/adapters/ai"
	"minerva/internal/adapters/config"
	"minerva/internal/tools"
	"minerva/pkg/logger"
)

// Deps bundles the process-wide collaborators agents are built from.
type Deps struct {
	Providers *ai.ProviderRegistry
	Tools     *tools.Registry
	Defaults  config.AgentsConfig
	AI        config.AIConfig
	Log       *logger.Logger

	// Usage is optional; nil disables per-call token accounting.
	Usage UsageRecorder
}

// Factory creates agents from the type registry, caching instances per
// agent id.
type Factory struct {
	registry *Registry
	deps     Deps

	mu    sync.Mutex
	cache map[string]Agent
}

// NewFactory constructs a factory over a populated type registry.
func NewFactory(registry *Registry, deps Deps) *Factory {
	return &Factory{
		registry: registry,
		deps:     deps,
		cache:    make(map[string]Agent),
	}
}

// Create builds (or returns a cached) agent for the given config.
// Construction failures surface to the caller, not swallowed.
func (f *Factory) Create(cfg Config) (Agent, error) {
	cfg = f.applyDefaults(cfg)

	f.mu.Lock()
	defer f.mu.Unlock()

	if ag, ok := f.cache[cfg.ID]; ok {
		return ag, nil
	}

	ctor, err := f.registry.Get(cfg.Type)
	if err != nil {
		return nil, err
	}

	ag, err := ctor(f.deps, cfg)
	if err != nil {
		return nil, NewAgentError(CodeInitializationFailed, cfg.ID, "constructor failed").WithCause(err)
	}

	// Agents that delegate to sub-agents get a handle back to the factory.
	if binder, ok := ag.(interface{ bindFactory(*Factory) }); ok {
		binder.bindFactory(f)
	}

	f.cache[cfg.ID] = ag
	return ag, nil
}

// CreateByType builds an agent from the default config table for the type.
func (f *Factory) CreateByType(agentType AgentType) (Agent, error) {
	cfg, ok := DefaultConfigs[agentType]
	if !ok {
		return nil, NewAgentError(CodeAgentNotFound, "",
			"no default config for agent type "+string(agentType))
	}
	return f.Create(cfg)
}

// chatClientFor resolves the provider and builds a chat client bound to
// the agent's configuration.
func chatClientFor(deps Deps, cfg Config) (ChatClient, error) {
	providerName := cfg.Provider
	if providerName == "" {
		providerName = deps.AI.DefaultProvider
	}
	provider, err := deps.Providers.Get(providerName)
	if err != nil {
		return nil, err
	}
	return NewChatClient(provider, cfg, deps.Tools, deps.Usage)
}

func (f *Factory) applyDefaults(cfg Config) Config {
	if cfg.Model == "" {
		cfg.Model = f.deps.AI.DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = f.deps.Defaults.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = f.deps.Defaults.MaxTokens
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = f.deps.Defaults.MaxRetries
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = f.deps.Defaults.MaxIterations
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = f.deps.Defaults.ExecutionTimeout
	}
	return cfg.withDefaults()
}

// RegisterDefaults populates the registry with the built-in agent set.
// Called once during startup.
func RegisterDefaults(registry *Registry) error {
	analysts := map[AgentType]DecisionKind{
		AgentTechnicalAnalyst:   DecisionHold,
		AgentFundamentalAnalyst: DecisionHold,
		AgentSentimentAnalyst:   DecisionObserve,
		AgentStrategyAnalyzer:   DecisionHold,
		AgentRiskAssessor:       DecisionObserve,
		AgentSignalGenerator:    DecisionHold,
	}

	for agentType, kind := range analysts {
		at, k := agentType, kind
		if err := registry.Register(at, func(deps Deps, cfg Config) (Agent, error) {
			return newAnalystAgent(deps, cfg, k)
		}); err != nil {
			return err
		}
	}

	if err := registry.Register(AgentOrchestrator, newOrchestratorAgent); err != nil {
		return err
	}
	return registry.Register(AgentSupervisor, newSupervisorAgent)
}
