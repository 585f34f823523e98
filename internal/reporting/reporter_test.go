// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stack-replayer/internal/reporting"
)

const testToolVersion = "v1.0.0-test"

func TestNew_Formats_Stdout(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	testCases := []struct {
		format   string
		expected any
	}{
		{format: "", expected: &reporting.TextReporter{}},
		{format: "text", expected: &reporting.TextReporter{}},
		{format: "json", expected: &reporting.JSONReporter{}},
		{format: "sarif", expected: &reporting.SARIFReporter{}},
	}

	for _, tc := range testCases {
		var stdout bytes.Buffer
		r, err := reporting.New(tc.format, "stdout", &stdout, testToolVersion, logger)
		require.NoError(t, err, tc.format)
		assert.IsType(t, tc.expected, r, tc.format)
		// Closing must not close stdout.
		assert.NoError(t, r.Close())
	}
}

func TestNew_Success_File(t *testing.T) {
	t.Parallel()
	tmpFile := filepath.Join(t.TempDir(), "output.sarif")

	r, err := reporting.New("sarif", tmpFile, nil, testToolVersion, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = os.Stat(tmpFile)
	assert.NoError(t, err, "Output file should have been created")

	require.NoError(t, r.Close())
	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "2.1.0"`)
}

func TestNew_Failure_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	r, err := reporting.New("invalid-format", "stdout", &bytes.Buffer{}, testToolVersion, logger)
	assert.Nil(t, r)
	assert.EqualError(t, err, "unsupported output format: invalid-format")

	// The file is created before the format is checked and must be left empty.
	tmpFile := filepath.Join(t.TempDir(), "output.txt")
	r, err = reporting.New("invalid-format", tmpFile, nil, testToolVersion, logger)
	assert.Error(t, err)
	assert.Nil(t, r)

	info, err := os.Stat(tmpFile)
	require.NoError(t, err, "File should still exist after failure")
	assert.Equal(t, int64(0), info.Size())
}

func TestNew_Failure_FileCreation(t *testing.T) {
	t.Parallel()
	// A directory cannot be created as a file.
	r, err := reporting.New("json", t.TempDir(), nil, testToolVersion, zaptest.NewLogger(t))
	assert.Nil(t, r)
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestNew_Failure_NilLogger(t *testing.T) {
	t.Parallel()
	r, err := reporting.New("text", "stdout", &bytes.Buffer{}, testToolVersion, nil)
	assert.Nil(t, r)
	assert.EqualError(t, err, "logger cannot be nil")
}
