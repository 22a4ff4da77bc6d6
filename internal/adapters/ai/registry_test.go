package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/errors"
)

func TestProviderRegistry_Register(t *testing.T) {
	registry := NewProviderRegistry()

	p := NewDeepSeekProvider("test-key", 10*time.Second, nil)
	require.NoError(t, registry.Register(p))

	err := registry.Register(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))
}

func TestProviderRegistry_Get(t *testing.T) {
	registry := NewProviderRegistry()
	require.NoError(t, registry.Register(NewAlibabaProvider("test-key", 10*time.Second, nil)))

	p, err := registry.Get("alibaba")
	require.NoError(t, err)
	assert.Equal(t, "alibaba", p.Name())

	_, err = registry.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestProviderRegistry_ResolveModel(t *testing.T) {
	registry := NewProviderRegistry()
	require.NoError(t, registry.Register(NewAlibabaProvider("test-key", 10*time.Second, nil)))
	require.NoError(t, registry.Register(NewDeepSeekProvider("test-key", 10*time.Second, nil)))

	p, err := registry.ResolveModel("qwen3-max")
	require.NoError(t, err)
	assert.Equal(t, "alibaba", p.Name())

	p, err = registry.ResolveModel("deepseek-chat")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())

	_, err = registry.ResolveModel("unknown-model")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelNotFound))
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
	assert.Equal(t, float64(1), limiter.Limit())
}

func TestGetModel_Unknown(t *testing.T) {
	p := NewOpenAIProvider("test-key", 10*time.Second, nil)

	_, err := p.GetModel(context.Background(), "gpt-imaginary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelNotFound))

	info, err := p.GetModel(context.Background(), "gpt-4o")
	require.NoError(t, err)
	assert.True(t, info.SupportsTools)
}
