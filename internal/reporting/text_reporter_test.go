// internal/reporting/text_reporter_test.go
package reporting_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/reporting"
)

func TestTextReporter_DryRun(t *testing.T) {
	t.Parallel()
	writer := newMockWriter()
	reporter := reporting.NewTextReporter(writer)

	require.NoError(t, reporter.Write(newEntry(nil)))
	require.NoError(t, reporter.Close())
	assert.True(t, writer.Closed)

	out := writer.Buffer.String()
	assert.Contains(t, out, "STACK REPLAYER - Analysis Results (error.log)")
	assert.Contains(t, out, "REPRODUCTION STEPS:\n  1. Navigate to project directory: /app\n  2. Observe the error\n")
	assert.Contains(t, out, "REPLAY SCRIPT:\nconsole.log('replay');\n")
	assert.Contains(t, out, "SUGGESTED FIX:\nAdd a null check.\n")
	assert.NotContains(t, out, "SANDBOX EXECUTION:")
	assert.NotContains(t, out, "SUGGESTED PATCH:")
	assert.NotContains(t, out, "SCRIPT WARNINGS:")

	order := []string{"EXPLANATION:", "REPRODUCTION STEPS:", "REPLAY SCRIPT:", "SUGGESTED FIX:"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(out, heading)
		assert.Greater(t, idx, last, heading)
		last = idx
	}
}

func TestTextReporter_FullResult(t *testing.T) {
	t.Parallel()
	writer := newMockWriter()
	reporter := reporting.NewTextReporter(writer)

	entry := newEntry(&schemas.Verdict{
		Reproduced: true,
		Stdout:     "line one\nline two",
		Stderr:     "TypeError: boom",
	})
	entry.Result.ScriptWarnings = []string{"replay script has syntax errors near line 3"}
	entry.Result.SuggestedPatch = "--- a/src/users.js\n+++ b/src/users.js"
	entry.Result.SuggestedTest = "test('x', () => {});"

	require.NoError(t, reporter.Write(entry))
	out := writer.Buffer.String()

	assert.Contains(t, out, "SCRIPT WARNINGS:\n  - replay script has syntax errors near line 3\n")
	assert.Contains(t, out, "SANDBOX EXECUTION:\n  Success: false\n  Reproduced: true\n  Exit Code: none\n")
	assert.Contains(t, out, "  STDOUT:\n  line one\n  line two\n")
	assert.Contains(t, out, "  STDERR:\n  TypeError: boom\n")
	assert.Contains(t, out, "SUGGESTED PATCH:\n--- a/src/users.js\n+++ b/src/users.js\n")
	assert.Contains(t, out, "SUGGESTED TEST:\ntest('x', () => {});\n")
}

func TestTextReporter_WriteError(t *testing.T) {
	t.Parallel()
	writer := newMockWriter()
	writer.FailWrite = true
	reporter := reporting.NewTextReporter(writer)
	assert.ErrorContains(t, reporter.Write(newEntry(nil)), "failed to write report")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	t.Run("Single Result Is An Object", func(t *testing.T) {
		t.Parallel()
		writer := newMockWriter()
		reporter := reporting.NewJSONReporter(writer)
		require.NoError(t, reporter.Write(newEntry(&schemas.Verdict{Success: true, ExitCode: intPtr(0)})))
		require.NoError(t, reporter.Close())

		var result map[string]any
		require.NoError(t, json.Unmarshal(writer.Buffer.Bytes(), &result))
		assert.Equal(t, "console.log('replay');", result["replayScript"])
		assert.Equal(t, map[string]any{
			"success":    true,
			"reproduced": false,
			"stdout":     "",
			"stderr":     "",
			"exitCode":   float64(0),
		}, result["sandboxResult"])
		assert.NotContains(t, result, "suggestedPatch")
	})

	t.Run("Several Results Are An Array", func(t *testing.T) {
		t.Parallel()
		writer := newMockWriter()
		reporter := reporting.NewJSONReporter(writer)
		require.NoError(t, reporter.Write(newEntry(nil)))
		require.NoError(t, reporter.Write(newEntry(nil)))
		require.NoError(t, reporter.Close())

		var results []schemas.Result
		require.NoError(t, json.Unmarshal(writer.Buffer.Bytes(), &results))
		assert.Len(t, results, 2)
	})

	t.Run("No Results Is An Empty Array", func(t *testing.T) {
		t.Parallel()
		writer := newMockWriter()
		reporter := reporting.NewJSONReporter(writer)
		require.NoError(t, reporter.Close())
		assert.Equal(t, "[]\n", writer.Buffer.String())
	})

	t.Run("Close Error", func(t *testing.T) {
		t.Parallel()
		writer := newMockWriter()
		writer.FailClose = true
		reporter := reporting.NewJSONReporter(writer)
		assert.ErrorContains(t, reporter.Close(), "failed to close output writer")
	})
}
