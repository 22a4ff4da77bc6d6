package agents

import (
	"context"
	"fmt"
	"time"

	"minerva/internal/tools"
	"minerva/pkg/logger"
)

// retryBaseDelay is the starting backoff for model invocations; it
// doubles on each attempt.
const retryBaseDelay = 500 * time.Millisecond

// executeFunc is the core loop a concrete agent plugs into BaseAgent.
// It returns the loop's aggregate result plus any decisions produced.
type executeFunc func(ctx context.Context, state *SharedState) (map[string]interface{}, []Decision, error)

// BaseAgent carries the shared run plumbing: input validation, state
// seeding, model retry, tool dispatch, and the structured-output
// guarantee. Concrete agents supply the execute function.
type BaseAgent struct {
	cfg       Config
	chat      ChatClient
	toolReg   *tools.Registry
	log       *logger.Logger
	execute   executeFunc
	decideAs  DecisionKind // default decision kind for extraction
}

// NewBaseAgent wires the shared plumbing for a concrete agent.
func NewBaseAgent(cfg Config, chat ChatClient, toolReg *tools.Registry, log *logger.Logger) *BaseAgent {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Get()
	}
	return &BaseAgent{
		cfg:      cfg,
		chat:     chat,
		toolReg:  toolReg,
		log:      log.With("agent_id", cfg.ID, "agent_type", cfg.Type),
		decideAs: DecisionHold,
	}
}

// ID returns the agent identifier.
func (a *BaseAgent) ID() string { return a.cfg.ID }

// Type returns the agent's type tag.
func (a *BaseAgent) Type() AgentType { return a.cfg.Type }

// Config returns the agent's static configuration.
func (a *BaseAgent) Config() Config { return a.cfg }

// Run executes the agent against a task descriptor. It always returns
// a structured output: typed internal failures and panics from
// injected tool handlers or chat clients are converted to a Failed
// status at this boundary, never propagated.
func (a *BaseAgent) Run(ctx context.Context, input Input) (out Output) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("agent run panicked", "task_id", input.TaskID, "panic", r)
			out = a.failed(start, fmt.Errorf("panic: %v", r))
		}
	}()

	if input.TaskID == "" {
		return a.failed(start, NewAgentError(CodeInvalidInput, a.cfg.ID, "task id is empty"))
	}
	if a.execute == nil {
		return a.failed(start, NewAgentError(CodeInitializationFailed, a.cfg.ID, "agent has no execute loop"))
	}

	// The timeout is a hard deadline around the whole run, not just
	// individual model calls.
	runCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	state := a.buildInitialState(input)

	result, decisions, err := a.execute(runCtx, state)
	if err != nil {
		a.log.Warnw("agent run failed", "task_id", input.TaskID, "error", err)
		return a.failed(start, err)
	}

	a.log.Infow("agent run completed",
		"task_id", input.TaskID,
		"decisions", len(decisions),
		"elapsed", time.Since(start))

	return Output{
		AgentID:   a.cfg.ID,
		Status:    StatusCompleted,
		Result:    result,
		Decisions: decisions,
		Elapsed:   time.Since(start),
	}
}

func (a *BaseAgent) failed(start time.Time, err error) Output {
	return Output{
		AgentID:   a.cfg.ID,
		Status:    StatusFailed,
		Result:    map[string]interface{}{},
		Decisions: []Decision{},
		Error:     err.Error(),
		Elapsed:   time.Since(start),
	}
}

// buildInitialState seeds the message history with the system prompt
// followed by a rendering of the task.
func (a *BaseAgent) buildInitialState(input Input) *SharedState {
	state := NewSharedState(input.TaskID, input.TaskType, input.Content)
	state.Metadata = mergeMaps(state.Metadata, input.Metadata)
	state.MaxIterations = a.cfg.MaxIterations

	if a.cfg.SystemPrompt != "" {
		state.AppendMessage(RoleSystem, a.cfg.SystemPrompt)
	}

	task := fmt.Sprintf("Task type: %s\nTask content: %v", input.TaskType, input.Content)
	if len(input.Context) > 0 {
		task += fmt.Sprintf("\nContext: %v", input.Context)
	}
	state.AppendMessage(RoleUser, task)

	return state
}

// invokeLLM wraps a model call with bounded retry and exponential
// backoff. Exhausting the budget fails with LLMError.
func (a *BaseAgent) invokeLLM(ctx context.Context, messages []Message, toolsEnabled bool) (*ModelResponse, error) {
	if a.chat == nil {
		return nil, NewAgentError(CodeLLMError, a.cfg.ID, "no chat client configured")
	}

	var lastErr error
	for attempt := 0; attempt < a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			a.log.Debugw("retrying model call", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, NewAgentError(CodeLLMError, a.cfg.ID, "model call cancelled").WithCause(ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := a.chat.Invoke(ctx, messages, toolsEnabled)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, NewAgentError(CodeLLMError, a.cfg.ID,
		fmt.Sprintf("model call failed after %d attempts", a.cfg.MaxRetries)).WithCause(lastErr)
}

// executeTool dispatches one tool call through the registry. Lookup
// misses and invocation errors both surface as ToolExecutionFailed
// with the tool name and arguments attached.
func (a *BaseAgent) executeTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	tool, err := a.toolRegistryGet(name)
	if err != nil {
		return nil, err
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return nil, NewAgentError(CodeToolExecutionFailed, a.cfg.ID,
			fmt.Sprintf("tool %s failed", name)).
			WithDetails(map[string]interface{}{"tool": name, "arguments": args}).
			WithCause(err)
	}
	return result, nil
}

func (a *BaseAgent) toolRegistryGet(name string) (tools.Tool, error) {
	if a.toolReg == nil {
		return nil, NewAgentError(CodeToolExecutionFailed, a.cfg.ID, "no tool registry configured").
			WithDetails(map[string]interface{}{"tool": name})
	}
	tool, err := a.toolReg.Get(name)
	if err != nil {
		return nil, NewAgentError(CodeToolExecutionFailed, a.cfg.ID,
			fmt.Sprintf("tool %s not found", name)).
			WithDetails(map[string]interface{}{"tool": name}).
			WithCause(err)
	}
	return tool, nil
}

func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
