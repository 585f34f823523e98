// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/stack-replayer/internal/config"
	"github.com/xkilldash9x/stack-replayer/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const sampleLog = `TypeError: Cannot read properties of undefined (reading 'id')
    at getUser (/app/src/users.js:12:20)
    at async handler (/app/src/routes.js:40:5)
    at process.processTicksAndRejections (node:internal/process/task_queues:95:5)`

func TestMain(m *testing.M) {
	// The logger is initialized once per process; keep it quiet for the suite.
	observability.Initialize(config.LoggerConfig{Level: "error", Format: "console"}, zapcore.AddSync(io.Discard))
	code := m.Run()
	observability.ResetForTest()
	os.Exit(code)
}

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	rootCmd := newRootCmd()

	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)

	err = rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

// writeFile creates a file with content in a test temp directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
