package ai

import (
	"context"
	"time"

	"minerva/pkg/errors"
)

// AlibabaProvider serves chat completions through the DashScope
// OpenAI-compatible endpoint.
type AlibabaProvider struct {
	client *compatClient
	models map[string]ModelInfo
}

var alibabaModels = map[string]ModelInfo{
	"qwen3-max": {
		Name:            "qwen3-max",
		Family:          "qwen",
		MaxTokens:       262144,
		InputCostPer1K:  0.0012,
		OutputCostPer1K: 0.006,
		SupportsTools:   true,
	},
	"qwen-plus": {
		Name:            "qwen-plus",
		Family:          "qwen",
		MaxTokens:       131072,
		InputCostPer1K:  0.0004,
		OutputCostPer1K: 0.0012,
		SupportsTools:   true,
	},
	"qwen-turbo": {
		Name:            "qwen-turbo",
		Family:          "qwen",
		MaxTokens:       131072,
		InputCostPer1K:  0.00005,
		OutputCostPer1K: 0.0002,
		SupportsTools:   true,
	},
}

func NewAlibabaProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *AlibabaProvider {
	return &AlibabaProvider{
		client: newCompatClient(alibabaBaseURL, apiKey, timeout, limiter),
		models: alibabaModels,
	}
}

func (p *AlibabaProvider) Name() string { return string(ProviderAlibaba) }

func (p *AlibabaProvider) SupportsTools() bool { return true }

func (p *AlibabaProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	info, ok := p.models[model]
	if !ok {
		return ModelInfo{}, errors.Wrapf(errors.ErrModelNotFound, "alibaba model %q", model)
	}
	return info, nil
}

func (p *AlibabaProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return modelList(p.models), nil
}

func (p *AlibabaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.client.chat(ctx, req)
}
