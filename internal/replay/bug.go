// internal/replay/bug.go
package replay

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
	"github.com/xkilldash9x/stack-replayer/internal/sandbox"
	"github.com/xkilldash9x/stack-replayer/internal/synth"
)

// BugOptions tunes Bug. The zero value runs heuristic synthesis and executes
// the script with the default sandbox settings.
type BugOptions struct {
	ProjectRoot string
	Metadata    schemas.Metadata
	// Client selects provider-backed synthesis when set.
	Client            schemas.LLMClient
	GenerationOptions schemas.GenerationOptions
	DryRun            bool
	// Sandbox overrides the default sandbox settings field by field.
	Sandbox config.SandboxConfig
	Logger  *zap.Logger
}

// Bug replays a single error log with minimal setup.
func Bug(ctx context.Context, errorLog string, opts BugOptions) (*schemas.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var synthesizer synth.Synthesizer = synth.NewHeuristic()
	if opts.Client != nil {
		synthesizer = synth.NewProvider(logger, opts.Client, opts.GenerationOptions)
	}

	replayer := New(logger, synthesizer, sandbox.New(logger, opts.Sandbox), WithDryRun(opts.DryRun))
	return replayer.Replay(ctx, schemas.RunContext{
		ErrorLog:    errorLog,
		ProjectRoot: opts.ProjectRoot,
		Metadata:    opts.Metadata,
	})
}
