// File: cmd/stackreplay/main_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ExitCodes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.log")

	testCases := []struct {
		name     string
		args     []string
		expected int
	}{
		{name: "Version", args: []string{"version"}, expected: 0},
		{name: "Unknown Command", args: []string{"frobnicate"}, expected: 1},
		{name: "Unreadable Log", args: []string{"replay", "--log", missing}, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, run(tc.args))
		})
	}
}

func TestMain_ExitsWithRunCode(t *testing.T) {
	originalExit, originalArgs := osExit, os.Args
	t.Cleanup(func() {
		osExit = originalExit
		os.Args = originalArgs
	})

	code := -1
	osExit = func(c int) { code = c }
	os.Args = []string{"stackreplay", "replay", "--log", filepath.Join(t.TempDir(), "missing.log")}

	main()
	assert.Equal(t, 1, code)
}
