// internal/synth/provider.go
package synth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/llmutil"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

// Defaults used when a provider reply leaves out a required field.
const (
	fallbackExplanation = "No explanation provided"
	fallbackScript      = "// No replay script generated"
)

// providerReply is the JSON shape requested by SystemPrompt. Steps are
// decoded loosely since models do not always honour the array type.
type providerReply struct {
	Explanation       string `json:"explanation"`
	ReproductionSteps any    `json:"reproductionSteps"`
	ReplayScript      string `json:"replayScript"`
	SuggestedFix      string `json:"suggestedFix"`
	SuggestedPatch    string `json:"suggestedPatch"`
	SuggestedTest     string `json:"suggestedTest"`
}

// Provider asks a reasoning provider for the artifacts. Failures are returned
// to the caller; there is no fallback to the heuristic path.
type Provider struct {
	logger  *zap.Logger
	client  schemas.LLMClient
	options schemas.GenerationOptions
}

// NewProvider wraps an LLM client as a Synthesizer.
func NewProvider(logger *zap.Logger, client schemas.LLMClient, options schemas.GenerationOptions) *Provider {
	options.ForceJSONFormat = true
	return &Provider{
		logger:  logger.Named("synth-provider"),
		client:  client,
		options: options,
	}
}

// Synthesize implements Synthesizer.
func (p *Provider) Synthesize(ctx context.Context, parsed stacktrace.ParsedLog, rc schemas.RunContext) (schemas.Artifacts, error) {
	prompt, err := BuildUserPrompt(parsed, rc)
	if err != nil {
		return schemas.Artifacts{}, fmt.Errorf("failed to construct LLM prompt: %w", err)
	}

	response, err := p.client.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		Options:      p.options,
	})
	if err != nil {
		return schemas.Artifacts{}, fmt.Errorf("LLM generation failed: %w", err)
	}

	artifacts, err := ParseProviderReply(response)
	if err != nil {
		p.logger.Error("Failed to parse LLM response.", zap.Error(err), zap.String("raw_response", response))
		return schemas.Artifacts{}, err
	}

	p.logger.Debug("Artifacts received from provider.", zap.Int("steps", len(artifacts.ReproductionSteps)))
	return artifacts, nil
}

// ParseProviderReply converts a model reply into Artifacts, filling defaults
// for the required fields.
func ParseProviderReply(response string) (schemas.Artifacts, error) {
	if strings.TrimSpace(response) == "" {
		return schemas.Artifacts{}, ErrEmptyResponse
	}

	reply, err := llmutil.ParseJSONObject[providerReply](response)
	if err != nil {
		return schemas.Artifacts{}, err
	}

	artifacts := schemas.Artifacts{
		Explanation:       strings.TrimSpace(reply.Explanation),
		ReproductionSteps: stepsFrom(reply.ReproductionSteps),
		ReplayScript:      llmutil.CleanCodeOutput(reply.ReplayScript),
		SuggestedFix:      strings.TrimSpace(reply.SuggestedFix),
		SuggestedPatch:    llmutil.CleanCodeOutput(reply.SuggestedPatch),
		SuggestedTest:     llmutil.CleanCodeOutput(reply.SuggestedTest),
	}
	if artifacts.Explanation == "" {
		artifacts.Explanation = fallbackExplanation
	}
	if artifacts.ReplayScript == "" {
		artifacts.ReplayScript = fallbackScript
	}
	return artifacts, nil
}

// stepsFrom keeps an array of steps as strings and drops anything else.
func stepsFrom(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return []string{}
	}
	steps := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			steps = append(steps, v)
		case nil:
		default:
			steps = append(steps, fmt.Sprint(v))
		}
	}
	return steps
}
