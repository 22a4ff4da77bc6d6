package ai

import (
	"minerva/internal/adapters/config"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// BuildRegistry constructs the provider registry from configuration.
// Providers with no API key configured are skipped.
func BuildRegistry(cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	var limiter RateLimiter
	if cfg.RateLimitEnabled && cfg.RateLimitPerMin > 0 {
		limiter = NewRateLimiter(float64(cfg.RateLimitPerMin)/60.0, cfg.RateLimitBurst)
	}

	if cfg.OpenAIKey != "" {
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, cfg.RequestTimeout, limiter)); err != nil {
			return nil, err
		}
	}
	if cfg.DeepSeekKey != "" {
		if err := registry.Register(NewDeepSeekProvider(cfg.DeepSeekKey, cfg.RequestTimeout, limiter)); err != nil {
			return nil, err
		}
	}
	if cfg.AlibabaKey != "" {
		if err := registry.Register(NewAlibabaProvider(cfg.AlibabaKey, cfg.RequestTimeout, limiter)); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no AI provider is configured")
	}

	if _, err := registry.Get(cfg.DefaultProvider); err != nil {
		return nil, errors.Wrapf(err, "default provider %q unavailable", cfg.DefaultProvider)
	}

	logger.Get().Infow("AI provider registry initialized",
		"providers", registry.List(),
		"default_provider", cfg.DefaultProvider,
		"default_model", cfg.DefaultModel)

	return registry, nil
}
