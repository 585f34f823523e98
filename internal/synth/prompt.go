// internal/synth/prompt.go
package synth

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SystemPrompt is shared by every reasoning provider.
const SystemPrompt = `You are an expert software debugger.
Given an error log and some context, you will:
1. Explain the likely root cause.
2. List concise steps to reproduce the bug.
3. Generate a Node.js replay script that attempts to reproduce the bug.
4. Suggest a human-readable fix and, if possible, a patch diff.
5. Provide a Jest/Vitest-style test file that would catch this bug.

Respond in strict JSON with keys:
- explanation: string
- reproductionSteps: string[]
- replayScript: string
- suggestedFix: string
- suggestedPatch: string (optional, unified diff format)
- suggestedTest: string (optional, test file content)`

// BuildUserPrompt renders the log, its parsed frames and the run context.
func BuildUserPrompt(parsed stacktrace.ParsedLog, rc schemas.RunContext) (string, error) {
	framesJSON, err := json.MarshalIndent(parsed.Frames, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode frames: %w", err)
	}
	metadataJSON, err := json.MarshalIndent(rc.Metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	projectRoot := rc.ProjectRoot
	if projectRoot == "" {
		projectRoot = "Not specified"
	}

	return fmt.Sprintf("Error log:\n```\n%s\n```\n\nParsed frames:\n%s\n\nMetadata:\n%s\n\nProject root: %s",
		parsed.Raw, framesJSON, metadataJSON, projectRoot), nil
}
