package agents

// newAnalystAgent wires a ReAct agent for one of the analyst types.
// The system prompt falls back to the built-in prompt for the type.
func newAnalystAgent(deps Deps, cfg Config, defaultKind DecisionKind) (Agent, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = PromptFor(cfg.Type)
	}

	chat, err := chatClientFor(deps, cfg)
	if err != nil {
		return nil, err
	}

	return NewReActAgent(cfg, chat, deps.Tools, deps.Log, defaultKind), nil
}
