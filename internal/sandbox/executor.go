// internal/sandbox/executor.go
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
)

const (
	tempDirPrefix = "stack-replayer-"
	timeoutMarker = "\n[Process killed due to timeout]"
	killedMarker  = "\n[Process killed: %s]"
)

// Executor runs replay scripts as child processes, each in its own scratch
// directory that is removed when the run ends.
type Executor struct {
	logger *zap.Logger
	cfg    config.SandboxConfig
}

// New creates an Executor. Unset fields of cfg fall back to the defaults.
func New(logger *zap.Logger, cfg config.SandboxConfig) *Executor {
	return &Executor{
		logger: logger.Named("sandbox"),
		cfg:    cfg.WithDefaults(),
	}
}

// Execute writes script to a fresh temporary directory and runs it with the
// configured interpreter. The child's working directory is workingDir when
// given, otherwise the temporary directory. Every failure is reported through
// the returned Verdict; Execute itself never fails.
func (e *Executor) Execute(ctx context.Context, script, workingDir string) schemas.Verdict {
	tempDir, cleanup, err := e.prepareWorkspace()
	if err != nil {
		return spawnFailure(err)
	}
	defer cleanup()

	scriptPath := filepath.Join(tempDir, e.cfg.ScriptName)
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return spawnFailure(fmt.Errorf("could not write replay script: %w", err))
	}

	if workingDir == "" {
		workingDir = tempDir
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.cfg.Interpreter, scriptPath)
	cmd.Dir = workingDir
	cmd.Env = os.Environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may keep the pipes open after the kill.
	cmd.WaitDelay = e.cfg.WaitDelay

	e.logger.Debug("Starting replay script.",
		zap.String("interpreter", e.cfg.Interpreter),
		zap.String("script", scriptPath),
		zap.String("cwd", workingDir),
	)

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if cmd.ProcessState == nil && runCtx.Err() == nil {
		e.logger.Warn("Replay script could not be started.", zap.Error(runErr))
		return spawnFailure(runErr)
	}

	verdict := schemas.Verdict{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case ctx.Err() != nil:
		verdict.Stderr += fmt.Sprintf(killedMarker, context.Cause(ctx))
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		verdict.Stderr += timeoutMarker
	default:
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			verdict.ExitCode = &code
		}
	}

	verdict.Success = verdict.ExitCode != nil && *verdict.ExitCode == 0
	verdict.Reproduced = !verdict.Success || verdict.Stderr != ""

	fields := []zap.Field{
		zap.Duration("duration", duration),
		zap.Bool("success", verdict.Success),
		zap.Bool("reproduced", verdict.Reproduced),
	}
	if verdict.ExitCode != nil {
		fields = append(fields, zap.Int("exit_code", *verdict.ExitCode))
	}
	e.logger.Info("Replay script finished.", fields...)

	return verdict
}

// prepareWorkspace creates the scratch directory and returns the function
// that removes it. Removal failures are logged and otherwise ignored.
func (e *Executor) prepareWorkspace() (string, func(), error) {
	tempDir, err := os.MkdirTemp("", tempDirPrefix)
	if err != nil {
		return "", nil, fmt.Errorf("could not create temp dir: %w", err)
	}

	cleanup := func() {
		if e.cfg.KeepTempDir {
			e.logger.Info("Keeping sandbox directory.", zap.String("dir", tempDir))
			return
		}
		if err := os.RemoveAll(tempDir); err != nil {
			e.logger.Debug("Failed to clean up sandbox directory.", zap.String("dir", tempDir), zap.Error(err))
		}
	}
	return tempDir, cleanup, nil
}

// spawnFailure is the verdict for a run that never produced a process.
func spawnFailure(err error) schemas.Verdict {
	return schemas.Verdict{
		Success:    false,
		Reproduced: false,
		Stderr:     err.Error(),
	}
}
