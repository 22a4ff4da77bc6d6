package agents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/ai_usage"
	"minerva/internal/tools"
	"minerva/pkg/errors"
)

// ModelToolCall is a tool invocation requested by the model.
type ModelToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// ModelResponse is the assistant turn returned by a model invocation.
type ModelResponse struct {
	Content   string
	ToolCalls []ModelToolCall
}

// ChatClient is the injected model capability: invoke with messages,
// optionally exposing tools, get an assistant message back.
type ChatClient interface {
	Invoke(ctx context.Context, messages []Message, toolsEnabled bool) (*ModelResponse, error)
}

// providerChatClient adapts a registered chat provider to the ChatClient
// contract for one agent configuration.
type providerChatClient struct {
	provider    ai.ChatProvider
	model       string
	temperature float64
	maxTokens   int
	tools       []ai.ToolDefinition

	agentID   string
	agentType string
	usage     UsageRecorder
}

// NewChatClient builds a ChatClient bound to a provider, model and the
// agent's allowed tools. A nil usage recorder disables usage tracking.
func NewChatClient(provider ai.ChatProvider, cfg Config, registry *tools.Registry, usage UsageRecorder) (ChatClient, error) {
	var defs []ai.ToolDefinition
	if registry != nil && len(cfg.Tools) > 0 {
		selected, err := registry.Select(cfg.Tools)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve tools for agent %s", cfg.ID)
		}
		for _, t := range selected {
			meta := t.Metadata()
			defs = append(defs, ai.ToolDefinition{
				Type: "function",
				Function: ai.FunctionDefinition{
					Name:        meta.Name,
					Description: meta.Description,
					Parameters:  meta.Parameters,
				},
			})
		}
	}

	return &providerChatClient{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		tools:       defs,
		agentID:     cfg.ID,
		agentType:   string(cfg.Type),
		usage:       usage,
	}, nil
}

func (c *providerChatClient) Invoke(ctx context.Context, messages []Message, toolsEnabled bool) (*ModelResponse, error) {
	req := ai.ChatRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if toolsEnabled {
		req.Tools = c.tools
	}

	started := time.Now()
	resp, err := c.provider.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	c.recordUsage(ctx, resp, time.Since(started))

	out := &ModelResponse{Content: resp.Content}
	for _, tc := range resp.ToolCalls {
		args := map[string]interface{}{}
		if tc.Function.Arguments != "" {
			// Malformed arguments degrade to an empty map; the tool
			// reports the missing fields itself.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		out.ToolCalls = append(out.ToolCalls, ModelToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

// recordUsage captures token accounting for one model call. Store is a
// buffered insert, failures never affect the run.
func (c *providerChatClient) recordUsage(ctx context.Context, resp *ai.ChatResponse, elapsed time.Duration) {
	if c.usage == nil {
		return
	}

	info := RunInfoFrom(ctx)
	model := resp.Model
	if model == "" {
		model = c.model
	}
	inputCost, outputCost := ai.CostUSD(model, resp.Usage)

	now := time.Now()
	_ = c.usage.Store(ctx, &ai_usage.UsageLog{
		Timestamp:        now,
		EventID:          uuid.NewString(),
		RunID:            info.RunID,
		StrategyID:       info.StrategyID,
		AgentID:          c.agentID,
		AgentType:        c.agentType,
		Workflow:         info.Workflow,
		Provider:         c.provider.Name(),
		ModelID:          model,
		ModelFamily:      ai.ModelFamily(model),
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
		InputCostUSD:     inputCost,
		OutputCostUSD:    outputCost,
		TotalCostUSD:     inputCost + outputCost,
		ToolCallsCount:   uint16(len(resp.ToolCalls)),
		LatencyMs:        uint32(elapsed.Milliseconds()),
		CreatedAt:        now,
	})
}

func toChatMessages(messages []Message) []ai.Message {
	out := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, ai.Message{
			Role:       ai.Role(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		})
	}
	return out
}
