// internal/llmclient/eino_client.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
)

// ChatModelClient adapts an eino chat model to schemas.LLMClient. It backs
// both the OpenAI and the Ollama providers.
type ChatModelClient struct {
	chat   model.BaseChatModel
	name   string
	logger *zap.Logger
}

// NewChatModelClient wraps an already constructed chat model.
func NewChatModelClient(chat model.BaseChatModel, name string, logger *zap.Logger) *ChatModelClient {
	return &ChatModelClient{
		chat:   chat,
		name:   name,
		logger: logger.Named("llm_client." + name),
	}
}

// NewOpenAIClient builds a client for the OpenAI chat completions API.
func NewOpenAIClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*ChatModelClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	modelCfg := &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   modelOrDefault(cfg.Model, defaultOpenAIModel),
		Timeout: cfg.APITimeout,
	}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		modelCfg.Temperature = &temperature
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}

	chat, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai chat model: %w", err)
	}
	return NewChatModelClient(chat, "openai", logger), nil
}

// NewOllamaClient builds a client for a local Ollama server.
func NewOllamaClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*ChatModelClient, error) {
	chat, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: modelOrDefault(cfg.BaseURL, defaultOllamaBaseURL),
		Model:   modelOrDefault(cfg.Model, defaultOllamaModel),
		Timeout: cfg.APITimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama chat model: %w", err)
	}
	return NewChatModelClient(chat, "ollama", logger), nil
}

// Generate sends the system and user prompts as a two-message conversation.
func (c *ChatModelClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(req.SystemPrompt),
		schema.UserMessage(req.UserPrompt),
	}

	var opts []model.Option
	if req.Options.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(req.Options.Temperature)))
	}
	if req.Options.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.Options.MaxTokens))
	}

	start := time.Now()
	msg, err := c.chat.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s generate failed: %w", c.name, err)
	}
	if msg == nil || msg.Content == "" {
		return "", fmt.Errorf("%s returned an empty message", c.name)
	}

	c.logger.Info("LLM generation complete.", zap.Duration("duration", time.Since(start)))
	return msg.Content, nil
}

// Close implements schemas.LLMClient. The chat models hold no resources.
func (c *ChatModelClient) Close() error {
	return nil
}
