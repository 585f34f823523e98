// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

const rule = "================================================================================"

// TextReporter writes a human readable section per entry as soon as it arrives.
type TextReporter struct {
	writer io.WriteCloser
	mu     sync.Mutex
}

// NewTextReporter creates a TextReporter that owns writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

// Write renders one entry.
func (r *TextReporter) Write(entry Entry) error {
	var sb strings.Builder
	renderText(&sb, entry)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.writer, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writer.Close()
}

func renderText(sb *strings.Builder, entry Entry) {
	result := entry.Result

	fmt.Fprintf(sb, "\n%s\nSTACK REPLAYER - Analysis Results (%s)\n%s\n\n", rule, entry.Source, rule)

	section(sb, "EXPLANATION", result.Explanation)

	if len(result.ReproductionSteps) > 0 {
		sb.WriteString("REPRODUCTION STEPS:\n")
		for i, step := range result.ReproductionSteps {
			fmt.Fprintf(sb, "  %d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	section(sb, "REPLAY SCRIPT", result.ReplayScript)

	if len(result.ScriptWarnings) > 0 {
		sb.WriteString("SCRIPT WARNINGS:\n")
		for _, warning := range result.ScriptWarnings {
			fmt.Fprintf(sb, "  - %s\n", warning)
		}
		sb.WriteString("\n")
	}

	section(sb, "SUGGESTED FIX", result.SuggestedFix)

	if verdict := result.SandboxResult; verdict != nil {
		exitCode := "none"
		if verdict.ExitCode != nil {
			exitCode = strconv.Itoa(*verdict.ExitCode)
		}
		sb.WriteString("SANDBOX EXECUTION:\n")
		fmt.Fprintf(sb, "  Success: %t\n", verdict.Success)
		fmt.Fprintf(sb, "  Reproduced: %t\n", verdict.Reproduced)
		fmt.Fprintf(sb, "  Exit Code: %s\n", exitCode)
		if verdict.Stdout != "" {
			fmt.Fprintf(sb, "\n  STDOUT:\n%s\n", indent(verdict.Stdout))
		}
		if verdict.Stderr != "" {
			fmt.Fprintf(sb, "\n  STDERR:\n%s\n", indent(verdict.Stderr))
		}
		sb.WriteString("\n")
	}

	section(sb, "SUGGESTED PATCH", result.SuggestedPatch)
	section(sb, "SUGGESTED TEST", result.SuggestedTest)

	sb.WriteString(rule + "\n")
}

// section writes a titled block, or nothing when body is empty.
func section(sb *strings.Builder, title, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(sb, "%s:\n%s\n\n", title, body)
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}
