// internal/reporting/helpers_test.go
package reporting_test

import (
	"bytes"
	"errors"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/reporting"
)

const typeErrorLog = `TypeError: Cannot read properties of undefined (reading 'id')
    at getUser (/app/src/users.js:12:20)
    at Layer.handle (/app/node_modules/express/lib/router/layer.js:95:5)`

// MockWriteCloser allows capturing output and simulating I/O errors.
type MockWriteCloser struct {
	Buffer    *bytes.Buffer
	FailWrite bool
	FailClose bool
	Closed    bool
}

// Write writes to the internal buffer, simulating a write error if configured.
func (m *MockWriteCloser) Write(p []byte) (n int, err error) {
	if m.FailWrite {
		return 0, errors.New("simulated write error")
	}
	return m.Buffer.Write(p)
}

// Close simulates a closing error if configured.
func (m *MockWriteCloser) Close() error {
	m.Closed = true
	if m.FailClose {
		return errors.New("simulated close error")
	}
	return nil
}

func newMockWriter() *MockWriteCloser {
	return &MockWriteCloser{Buffer: new(bytes.Buffer)}
}

func intPtr(v int) *int { return &v }

// newEntry builds an entry for typeErrorLog with an optional verdict.
func newEntry(verdict *schemas.Verdict) reporting.Entry {
	return reporting.Entry{
		Source: "error.log",
		Context: schemas.RunContext{
			ErrorLog:    typeErrorLog,
			ProjectRoot: "/app",
		},
		Result: &schemas.Result{
			Artifacts: schemas.Artifacts{
				Explanation:       "TypeError occurred: \"Cannot read properties of undefined (reading 'id')\"\n\nMore detail.",
				ReproductionSteps: []string{"Navigate to project directory: /app", "Observe the error"},
				ReplayScript:      "console.log('replay');",
				SuggestedFix:      "Add a null check.",
			},
			SandboxResult: verdict,
			RunID:         "run-1",
		},
	}
}
