// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter collects results and writes them on Close: a single result as
// an object, several as an array.
type JSONReporter struct {
	writer  io.WriteCloser
	mu      sync.Mutex
	results []*schemas.Result
}

// NewJSONReporter creates a JSONReporter that owns writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: writer}
}

// Write buffers one entry.
func (r *JSONReporter) Write(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, entry.Result)
	return nil
}

// Close encodes the buffered results and closes the writer.
func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var value any = r.results
	switch len(r.results) {
	case 0:
		value = []*schemas.Result{}
	case 1:
		value = r.results[0]
	}

	data, encodeErr := json.MarshalIndent(value, "", "  ")
	if encodeErr == nil {
		_, encodeErr = r.writer.Write(append(data, '\n'))
	}
	closeErr := r.writer.Close()

	if encodeErr != nil {
		return fmt.Errorf("failed to write JSON output: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}
