// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
)

var (
	// ErrUnknownProvider is returned for a provider name no client exists for.
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrMissingAPIKey is returned when a hosted provider has no API key.
	ErrMissingAPIKey = errors.New("LLM API key is required")
)

// Provider defaults.
const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultHTTPModel     = "gpt-3.5-turbo"
)

// NewClient builds the reasoning-provider client selected by cfg. It returns
// (nil, nil) when no provider is configured; callers then use heuristic
// synthesis.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch config.LLMProvider(strings.ToLower(string(cfg.Provider))) {
	case config.ProviderOpenAI:
		return NewOpenAIClient(ctx, cfg, logger)
	case config.ProviderOllama:
		return NewOllamaClient(ctx, cfg, logger)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	case config.ProviderHTTP:
		return NewHTTPClient(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: '%s'. Supported: [%s, %s, %s, %s]", ErrUnknownProvider, cfg.Provider,
			config.ProviderOpenAI, config.ProviderOllama, config.ProviderGemini, config.ProviderHTTP)
	}
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
