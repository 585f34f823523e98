// internal/reporting/sarif_reporter.go
package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/internal/reporting/sarif"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

// Constants for tool identification in the SARIF report.
const (
	ToolName     = "stack-replayer"
	ToolInfoURI  = "https://github.com/xkilldash9x/stack-replayer"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	rulePrefix   = "STACKREPLAY-"
)

// ruleIDSanitizer matches runs of characters not allowed in rule IDs.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// SARIFReporter writes one SARIF result per replayed log, with one rule per
// error kind. It is thread safe.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log
	// mu protects the log structure and the rule index.
	mu    sync.Mutex
	rules map[string]*sarif.ReportingDescriptor
}

// NewSARIFReporter creates a new reporter that writes SARIF output on Close.
func NewSARIFReporter(writer io.WriteCloser, toolVersion string, logger *zap.Logger) *SARIFReporter {
	log := &sarif.Log{
		Version: SARIFVersion,
		Schema:  SARIFSchema,
		Runs: []*sarif.Run{
			{
				Tool: &sarif.Tool{
					Driver: &sarif.ToolComponent{
						Name:           ToolName,
						Version:        pString(toolVersion),
						InformationURI: pString(ToolInfoURI),
						// Initialize empty slices (not nil) for proper JSON marshalling
						Rules: []*sarif.ReportingDescriptor{},
					},
				},
				Results: []*sarif.Result{},
			},
		},
	}

	return &SARIFReporter{
		writer: writer,
		logger: logger.Named("sarif_reporter"),
		log:    log,
		rules:  make(map[string]*sarif.ReportingDescriptor),
	}
}

// Write converts a replayed log into a SARIF result.
func (r *SARIFReporter) Write(entry Entry) error {
	parsed := stacktrace.Parse(entry.Context.ErrorLog)
	kind := parsed.ErrorKind
	if kind == "" {
		kind = "Error"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := entry.Result
	properties := sarif.PropertyBag{
		"runId":        result.RunID,
		"source":       entry.Source,
		"replayScript": result.ReplayScript,
	}
	if result.SandboxResult != nil {
		properties["reproduced"] = result.SandboxResult.Reproduced
	}

	run := r.log.Runs[0]
	run.Results = append(run.Results, &sarif.Result{
		RuleID:     r.ensureRule(kind, result.SuggestedFix),
		Message:    &sarif.Message{Text: pString(firstLine(result.Explanation))},
		Level:      levelFor(entry),
		Locations:  createLocations(parsed, entry.Context.ProjectRoot),
		Properties: &properties,
	})
	return nil
}

// Close finalizes the SARIF log and writes it to the output writer.
func (r *SARIFReporter) Close() error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("Finalizing SARIF report",
		zap.Int("total_results", len(r.log.Runs[0].Results)),
		zap.Int("total_rules", len(r.log.Runs[0].Tool.Driver.Rules)),
	)

	data, encodeErr := json.MarshalIndent(r.log, "", "  ")
	if encodeErr == nil {
		_, encodeErr = r.writer.Write(append(data, '\n'))
	}
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode SARIF log to JSON", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Debug("Successfully wrote SARIF report", zap.Duration("duration", time.Since(startTime)))
	return nil
}

// ruleID derives a stable rule ID from an error kind.
func ruleID(kind string) string {
	name := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(kind), "-"), "-")
	if name == "" {
		name = "ERROR"
	}
	return rulePrefix + name
}

// ensureRule registers a rule for kind on first use and returns its ID. The
// first suggested fix seen for the kind becomes the rule's help text.
// NOTE: Must be called while holding the mutex.
func (r *SARIFReporter) ensureRule(kind, suggestedFix string) string {
	id := ruleID(kind)
	if _, exists := r.rules[id]; exists {
		return id
	}

	r.logger.Debug("Registering new SARIF rule definition", zap.String("rule_id", id))

	rule := &sarif.ReportingDescriptor{
		ID:               id,
		Name:             pString(kind),
		ShortDescription: &sarif.MessageString{Text: pString("Uncaught " + kind)},
		FullDescription: &sarif.MessageString{
			Text: pString(fmt.Sprintf("A %s was thrown and not handled.", kind)),
		},
		Properties: &sarif.PropertyBag{"tags": []string{"runtime-error", "node"}},
	}
	if suggestedFix != "" {
		rule.Help = &sarif.MessageString{Text: pString(suggestedFix)}
	}

	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, rule)
	r.rules[id] = rule
	return id
}

// levelFor maps the sandbox outcome to a SARIF level: a reproduced failure is
// an error, an unverified one a warning and one that did not reproduce a note.
func levelFor(entry Entry) sarif.Level {
	verdict := entry.Result.SandboxResult
	switch {
	case verdict == nil:
		return sarif.LevelWarning
	case verdict.Reproduced:
		return sarif.LevelError
	default:
		return sarif.LevelNote
	}
}

// createLocations points at the top user frame. Paths under projectRoot are
// made relative to it.
func createLocations(parsed stacktrace.ParsedLog, projectRoot string) []*sarif.Location {
	frame, ok := stacktrace.TopUserFrame(parsed)
	if !ok || frame.File == "" {
		return nil
	}

	uri := frame.File
	if projectRoot != "" {
		if rel, err := filepath.Rel(projectRoot, frame.File); err == nil && !strings.HasPrefix(rel, "..") {
			uri = filepath.ToSlash(rel)
		}
	}

	msg := "Thrown here"
	if frame.Function != "" {
		msg = fmt.Sprintf("Thrown in %s", frame.Function)
	}

	return []*sarif.Location{{
		PhysicalLocation: &sarif.PhysicalLocation{
			ArtifactLocation: &sarif.ArtifactLocation{URI: pString(uri)},
			Region:           &sarif.Region{StartLine: frame.Line, StartColumn: frame.Column},
		},
		Message: &sarif.Message{Text: pString(msg)},
	}}
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}

// pString returns a pointer to the given string value. Helper for optional SARIF fields.
func pString(s string) *string {
	return &s
}
