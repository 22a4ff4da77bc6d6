package ai

import (
	"context"
	"time"

	"minerva/pkg/errors"
)

// OpenAIProvider serves chat completions through the OpenAI API.
type OpenAIProvider struct {
	client *compatClient
	models map[string]ModelInfo
}

var openAIModels = map[string]ModelInfo{
	"gpt-4o": {
		Name:            "gpt-4o",
		Family:          "gpt-4o",
		MaxTokens:       128000,
		InputCostPer1K:  0.0025,
		OutputCostPer1K: 0.01,
		SupportsTools:   true,
	},
	"gpt-4o-mini": {
		Name:            "gpt-4o-mini",
		Family:          "gpt-4o",
		MaxTokens:       128000,
		InputCostPer1K:  0.00015,
		OutputCostPer1K: 0.0006,
		SupportsTools:   true,
	},
	"gpt-4-turbo": {
		Name:            "gpt-4-turbo",
		Family:          "gpt-4",
		MaxTokens:       128000,
		InputCostPer1K:  0.01,
		OutputCostPer1K: 0.03,
		SupportsTools:   true,
	},
}

func NewOpenAIProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *OpenAIProvider {
	return &OpenAIProvider{
		client: newCompatClient(openAIBaseURL, apiKey, timeout, limiter),
		models: openAIModels,
	}
}

func (p *OpenAIProvider) Name() string { return string(ProviderOpenAI) }

func (p *OpenAIProvider) SupportsTools() bool { return true }

func (p *OpenAIProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	info, ok := p.models[model]
	if !ok {
		return ModelInfo{}, errors.Wrapf(errors.ErrModelNotFound, "openai model %q", model)
	}
	return info, nil
}

func (p *OpenAIProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return modelList(p.models), nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.client.chat(ctx, req)
}

func modelList(models map[string]ModelInfo) []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, info := range models {
		out = append(out, info)
	}
	return out
}
