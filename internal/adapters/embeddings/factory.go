package embeddings

import (
	"time"

	"minerva/pkg/errors"
)

// ProviderType names a supported embedding backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
)

// Config selects and configures an embedding provider.
type Config struct {
	Provider ProviderType
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Timeout)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"unsupported embedding provider: %s", cfg.Provider)
	}
}
