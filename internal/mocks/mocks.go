// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

// -- LLM Client Mock --

// MockLLMClient mocks the schemas.LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

// Generate provides a mock function for LLM calls.
func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Close provides a mock function for releasing client resources.
func (m *MockLLMClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// -- Synthesizer Mock --

// MockSynthesizer mocks the synth.Synthesizer interface.
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, parsed stacktrace.ParsedLog, rc schemas.RunContext) (schemas.Artifacts, error) {
	args := m.Called(ctx, parsed, rc)
	return args.Get(0).(schemas.Artifacts), args.Error(1)
}

// -- Executor Mock --

// MockExecutor mocks the replay.Executor interface.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, script, workingDir string) schemas.Verdict {
	args := m.Called(ctx, script, workingDir)
	return args.Get(0).(schemas.Verdict)
}

// -- Script Checker Mock --

// MockScriptChecker mocks the replay.ScriptChecker interface.
type MockScriptChecker struct {
	mock.Mock
}

func (m *MockScriptChecker) Check(ctx context.Context, script string) []string {
	args := m.Called(ctx, script)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
