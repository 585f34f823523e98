// internal/replay/replayer.go
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
	"github.com/xkilldash9x/stack-replayer/internal/synth"
)

// ErrEmptyLog is returned when there is no error log to replay.
var ErrEmptyLog = errors.New("no error log provided")

// Executor runs a replay script and reports the outcome.
type Executor interface {
	Execute(ctx context.Context, script, workingDir string) schemas.Verdict
}

// ScriptChecker inspects a generated script without running it.
type ScriptChecker interface {
	Check(ctx context.Context, script string) []string
}

// Replayer wires parsing, synthesis, script checking and sandbox execution.
// The synthesizer is chosen at construction and never inspected afterwards.
type Replayer struct {
	logger      *zap.Logger
	synthesizer synth.Synthesizer
	executor    Executor
	checker     ScriptChecker
	dryRun      bool
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithDryRun skips sandbox execution when enabled.
func WithDryRun(dryRun bool) Option {
	return func(r *Replayer) { r.dryRun = dryRun }
}

// WithScriptChecker attaches a checker whose warnings are added to each result.
func WithScriptChecker(checker ScriptChecker) Option {
	return func(r *Replayer) { r.checker = checker }
}

// New creates a Replayer. executor may be nil only for dry runs.
func New(logger *zap.Logger, synthesizer synth.Synthesizer, executor Executor, opts ...Option) *Replayer {
	r := &Replayer{
		logger:      logger.Named("replayer"),
		synthesizer: synthesizer,
		executor:    executor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay parses the log in rc, synthesizes artifacts and, unless this is a
// dry run, executes the replay script. Only synthesis failures and an empty
// log are returned as errors; execution problems live in the Verdict.
func (r *Replayer) Replay(ctx context.Context, rc schemas.RunContext) (*schemas.Result, error) {
	if strings.TrimSpace(rc.ErrorLog) == "" {
		return nil, ErrEmptyLog
	}

	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))
	start := time.Now()

	parsed := stacktrace.Parse(rc.ErrorLog)
	logger.Debug("Parsed error log.",
		zap.String("error_kind", parsed.ErrorKind),
		zap.Int("frames", len(parsed.Frames)),
	)

	artifacts, err := r.synthesizer.Synthesize(ctx, parsed, rc)
	if err != nil {
		logger.Error("Synthesis failed.", zap.Error(err))
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	result := &schemas.Result{Artifacts: artifacts, RunID: runID}

	if r.checker != nil {
		result.ScriptWarnings = r.checker.Check(ctx, artifacts.ReplayScript)
	}

	if !r.dryRun && r.executor != nil {
		verdict := r.executor.Execute(ctx, artifacts.ReplayScript, rc.ProjectRoot)
		result.SandboxResult = &verdict
	}

	logger.Info("Replay complete.",
		zap.Bool("dry_run", result.SandboxResult == nil),
		zap.Int("script_warnings", len(result.ScriptWarnings)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// ReplayAll replays each context with at most concurrency runs in flight.
// Results are in input order. The first failure cancels the remaining runs.
func (r *Replayer) ReplayAll(ctx context.Context, contexts []schemas.RunContext, concurrency int) ([]*schemas.Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*schemas.Result, len(contexts))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range contexts {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := r.Replay(groupCtx, contexts[i])
			if err != nil {
				return fmt.Errorf("replay %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
