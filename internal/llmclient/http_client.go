// internal/llmclient/http_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPClient talks to any OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger

	// initialInterval seeds the exponential backoff between attempts.
	initialInterval time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	// Message is the Ollama-style shape some compatible servers return.
	Message *chatMessage `json:"message"`
}

// NewHTTPClient initializes the client. cfg.BaseURL is the full endpoint URL.
func NewHTTPClient(cfg config.LLMConfig, logger *zap.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http provider requires llm.base_url")
	}

	return &HTTPClient{
		endpoint:        cfg.BaseURL,
		apiKey:          cfg.APIKey,
		model:           modelOrDefault(cfg.Model, defaultHTTPModel),
		maxRetries:      cfg.MaxRetries,
		httpClient:      &http.Client{Timeout: cfg.APITimeout},
		logger:          logger.Named("llm_client.http"),
		initialInterval: backoff.DefaultInitialInterval,
	}, nil
}

// Generate posts the prompts and returns the first choice's content,
// retrying transient failures.
func (c *HTTPClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
	}
	if req.Options.ForceJSONFormat {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute

	var content string
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.logger.Warn("Network error during LLM request, retrying...", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var decoded chatResponse
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}

		switch {
		case len(decoded.Choices) > 0 && decoded.Choices[0].Message.Content != "":
			content = decoded.Choices[0].Message.Content
		case decoded.Message != nil && decoded.Message.Content != "":
			content = decoded.Message.Content
		default:
			return backoff.Permanent(fmt.Errorf("empty response from HTTP LLM"))
		}

		c.logger.Info("LLM generation complete (HTTP)", zap.Duration("duration", time.Since(start)))
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return content, nil
}

func (c *HTTPClient) handleAPIError(statusCode int, body []byte) error {
	c.logger.Error("LLM endpoint returned error status", zap.Int("status", statusCode), zap.String("response", string(body)))
	err := fmt.Errorf("HTTP LLM error: %d %s", statusCode, http.StatusText(statusCode))

	if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
		return err
	}
	return backoff.Permanent(err)
}

// Close implements schemas.LLMClient.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
