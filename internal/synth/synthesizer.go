// internal/synth/synthesizer.go
package synth

import (
	"context"
	"errors"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

// ErrEmptyResponse is returned when a reasoning provider answers with nothing usable.
var ErrEmptyResponse = errors.New("empty response from reasoning provider")

// Synthesizer turns a parsed log into reproduction artifacts. Implementations
// must always fill Explanation and ReplayScript.
type Synthesizer interface {
	Synthesize(ctx context.Context, parsed stacktrace.ParsedLog, rc schemas.RunContext) (schemas.Artifacts, error)
}

// Heuristic derives artifacts from the trace structure alone. It never fails.
type Heuristic struct{}

// NewHeuristic returns the no-provider synthesizer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Synthesize implements Synthesizer.
func (h *Heuristic) Synthesize(_ context.Context, parsed stacktrace.ParsedLog, rc schemas.RunContext) (schemas.Artifacts, error) {
	return BuildHeuristic(parsed, rc), nil
}
