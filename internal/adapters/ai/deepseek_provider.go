package ai

import (
	"context"
	"time"

	"minerva/pkg/errors"
)

// DeepSeekProvider serves chat completions through the DeepSeek API,
// which is OpenAI wire compatible.
type DeepSeekProvider struct {
	client *compatClient
	models map[string]ModelInfo
}

var deepSeekModels = map[string]ModelInfo{
	"deepseek-chat": {
		Name:            "deepseek-chat",
		Family:          "deepseek",
		MaxTokens:       64000,
		InputCostPer1K:  0.00027,
		OutputCostPer1K: 0.0011,
		SupportsTools:   true,
	},
	"deepseek-reasoner": {
		Name:            "deepseek-reasoner",
		Family:          "deepseek",
		MaxTokens:       64000,
		InputCostPer1K:  0.00055,
		OutputCostPer1K: 0.00219,
		SupportsTools:   false,
	},
}

func NewDeepSeekProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *DeepSeekProvider {
	return &DeepSeekProvider{
		client: newCompatClient(deepSeekBaseURL, apiKey, timeout, limiter),
		models: deepSeekModels,
	}
}

func (p *DeepSeekProvider) Name() string { return string(ProviderDeepSeek) }

func (p *DeepSeekProvider) SupportsTools() bool { return true }

func (p *DeepSeekProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	info, ok := p.models[model]
	if !ok {
		return ModelInfo{}, errors.Wrapf(errors.ErrModelNotFound, "deepseek model %q", model)
	}
	return info, nil
}

func (p *DeepSeekProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return modelList(p.models), nil
}

func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.client.chat(ctx, req)
}
