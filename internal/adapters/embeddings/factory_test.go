package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_OpenAIDefaults(t *testing.T) {
	p, err := NewProvider(Config{Provider: ProviderOpenAI, APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-small", p.Name())
	assert.Equal(t, 1536, p.Dimensions())
}

func TestNewProvider_LargeModelDimensions(t *testing.T) {
	p, err := NewProvider(Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		Model:    "text-embedding-3-large",
	})
	require.NoError(t, err)

	assert.Equal(t, 3072, p.Dimensions())
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewProvider(Config{Provider: ProviderOpenAI})
	require.Error(t, err)
}

func TestNewProvider_UnknownBackend(t *testing.T) {
	_, err := NewProvider(Config{Provider: "cohere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}
