// internal/sandbox/executor_test.go
package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stack-replayer/internal/config"
)

func shellConfig() config.SandboxConfig {
	return config.SandboxConfig{
		Interpreter: "sh",
		ScriptName:  "replay.mjs",
		Timeout:     5 * time.Second,
		WaitDelay:   200 * time.Millisecond,
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecute_Outcomes(t *testing.T) {
	requireShell(t)
	t.Parallel()

	testCases := []struct {
		name           string
		script         string
		wantSuccess    bool
		wantReproduced bool
		wantExit       int
		wantStdout     string
		wantStderr     string
	}{
		{"Clean Exit", "exit 0", true, false, 0, "", ""},
		{"Stderr Flips Reproduced", "echo out; echo boom >&2; exit 0", true, true, 0, "out\n", "boom\n"},
		{"Non Zero Exit", "echo partial; exit 3", false, true, 3, "partial\n", ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			executor := New(zaptest.NewLogger(t), shellConfig())

			verdict := executor.Execute(context.Background(), tc.script, "")

			assert.Equal(t, tc.wantSuccess, verdict.Success)
			assert.Equal(t, tc.wantReproduced, verdict.Reproduced)
			require.NotNil(t, verdict.ExitCode)
			assert.Equal(t, tc.wantExit, *verdict.ExitCode)
			assert.Equal(t, tc.wantStdout, verdict.Stdout)
			assert.Equal(t, tc.wantStderr, verdict.Stderr)
		})
	}
}

func TestExecute_PartialConfigUsesDefaults(t *testing.T) {
	requireShell(t)
	t.Parallel()

	// Only the interpreter is set. A zero timeout or script name must not
	// leak into the run.
	executor := New(zaptest.NewLogger(t), config.SandboxConfig{Interpreter: "sh"})

	verdict := executor.Execute(context.Background(), "echo ran", "")

	assert.True(t, verdict.Success)
	assert.False(t, verdict.Reproduced)
	require.NotNil(t, verdict.ExitCode)
	assert.Equal(t, 0, *verdict.ExitCode)
	assert.Equal(t, "ran\n", verdict.Stdout)
	assert.Empty(t, verdict.Stderr)
}

func TestExecute_Timeout(t *testing.T) {
	requireShell(t)
	t.Parallel()
	cfg := shellConfig()
	cfg.Timeout = 200 * time.Millisecond
	executor := New(zaptest.NewLogger(t), cfg)

	start := time.Now()
	verdict := executor.Execute(context.Background(), "echo started; exec sleep 30", "")

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Nil(t, verdict.ExitCode)
	assert.False(t, verdict.Success)
	assert.True(t, verdict.Reproduced)
	assert.Equal(t, "started\n", verdict.Stdout)
	assert.True(t, strings.HasSuffix(verdict.Stderr, "\n[Process killed due to timeout]"))
}

func TestExecute_CallerCancellation(t *testing.T) {
	requireShell(t)
	t.Parallel()
	executor := New(zaptest.NewLogger(t), shellConfig())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	verdict := executor.Execute(ctx, "exec sleep 30", "")

	assert.Nil(t, verdict.ExitCode)
	assert.True(t, verdict.Reproduced)
	assert.Equal(t, "\n[Process killed: context canceled]", verdict.Stderr)
}

func TestExecute_SpawnFailure(t *testing.T) {
	t.Parallel()
	cfg := shellConfig()
	cfg.Interpreter = filepath.Join(t.TempDir(), "no-such-interpreter")
	executor := New(zaptest.NewLogger(t), cfg)

	verdict := executor.Execute(context.Background(), "exit 0", "")

	assert.False(t, verdict.Success)
	assert.False(t, verdict.Reproduced)
	assert.Empty(t, verdict.Stdout)
	assert.Contains(t, verdict.Stderr, "no-such-interpreter")
	assert.Nil(t, verdict.ExitCode)
}

func TestExecute_WorkingDirectory(t *testing.T) {
	requireShell(t)
	t.Parallel()
	executor := New(zaptest.NewLogger(t), shellConfig())
	projectRoot := t.TempDir()

	verdict := executor.Execute(context.Background(), "pwd", projectRoot)
	require.True(t, verdict.Success, verdict.Stderr)

	want, err := filepath.EvalSymlinks(projectRoot)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(verdict.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestExecute_RemovesTempDir checks cleanup on each exit path. It redirects
// TMPDIR, so it cannot run in parallel.
func TestExecute_RemovesTempDir(t *testing.T) {
	requireShell(t)

	testCases := []struct {
		name   string
		mutate func(*config.SandboxConfig)
		script string
	}{
		{"Success", func(*config.SandboxConfig) {}, "exit 0"},
		{"Failure", func(*config.SandboxConfig) {}, "exit 1"},
		{"Timeout", func(c *config.SandboxConfig) { c.Timeout = 100 * time.Millisecond }, "exec sleep 30"},
		{"Spawn Error", func(c *config.SandboxConfig) { c.Interpreter = "/nonexistent/interpreter" }, "exit 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			base := t.TempDir()
			t.Setenv("TMPDIR", base)

			cfg := shellConfig()
			tc.mutate(&cfg)
			New(zaptest.NewLogger(t), cfg).Execute(context.Background(), tc.script, "")

			entries, err := os.ReadDir(base)
			require.NoError(t, err)
			assert.Empty(t, entries, "sandbox directory outlived the execution")
		})
	}
}

func TestExecute_KeepTempDir(t *testing.T) {
	requireShell(t)
	t.Parallel()
	cfg := shellConfig()
	cfg.KeepTempDir = true
	executor := New(zaptest.NewLogger(t), cfg)

	verdict := executor.Execute(context.Background(), "pwd", "")
	dir := strings.TrimSpace(verdict.Stdout)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	assert.Contains(t, filepath.Base(dir), "stack-replayer-")
	_, err := os.Stat(filepath.Join(dir, "replay.mjs"))
	assert.NoError(t, err)
}

func TestExecute_Node(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not available")
	}
	t.Parallel()
	cfg := shellConfig()
	cfg.Interpreter = "node"
	cfg.Timeout = 30 * time.Second
	executor := New(zaptest.NewLogger(t), cfg)

	t.Run("Exit Zero", func(t *testing.T) {
		t.Parallel()
		verdict := executor.Execute(context.Background(), "process.exit(0)", "")
		assert.True(t, verdict.Success)
		assert.False(t, verdict.Reproduced)
		require.NotNil(t, verdict.ExitCode)
		assert.Equal(t, 0, *verdict.ExitCode)
	})

	t.Run("Stderr With Exit Zero", func(t *testing.T) {
		t.Parallel()
		verdict := executor.Execute(context.Background(), "console.error('diagnostic'); process.exit(0)", "")
		assert.True(t, verdict.Success)
		assert.True(t, verdict.Reproduced)
		assert.Equal(t, "diagnostic\n", verdict.Stderr)
	})

	t.Run("Thrown Error", func(t *testing.T) {
		t.Parallel()
		verdict := executor.Execute(context.Background(), "throw new TypeError('boom')", "")
		assert.False(t, verdict.Success)
		assert.True(t, verdict.Reproduced)
		assert.Contains(t, verdict.Stderr, "TypeError: boom")
	})
}
