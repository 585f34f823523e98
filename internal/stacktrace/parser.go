// internal/stacktrace/parser.go
package stacktrace

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is a single call-site entry from a stack trace. A zero value in any of
// Function, File, Line or Column means the trace did not carry that detail.
type Frame struct {
	// Function is the called function, e.g. "Object.<anonymous>".
	Function string `json:"functionName,omitempty"`
	// File is the module path or URL as printed in the trace.
	File string `json:"filePath,omitempty"`
	// Line is the 1-based line number.
	Line int `json:"line,omitempty"`
	// Column is the 1-based column number.
	Column int `json:"column,omitempty"`
	// Raw is the trimmed source line the frame was read from. Always set.
	Raw string `json:"raw"`
}

// ParsedLog is the structured form of one error log.
type ParsedLog struct {
	// Raw is the untouched input.
	Raw string `json:"raw"`
	// ErrorKind is the error category from the header line, e.g. "TypeError".
	ErrorKind string `json:"errorName,omitempty"`
	// ErrorMessage is the header message, or the whole header line when no
	// kind could be split off.
	ErrorMessage string `json:"errorMessage,omitempty"`
	// Frames are in source order, innermost call first.
	Frames []Frame `json:"frames"`
}

// frameMarker opens every stack frame line.
const frameMarker = "at "

// Regex definitions for the supported frame shapes, tried in order.
var (
	// Matches "<Kind>: <message>" on the header line.
	headerRegex = regexp.MustCompile(`^(\w+):\s*(.+)$`)
	// Matches "at fn (path:line:col)".
	namedLocationRegex = regexp.MustCompile(`^at\s+(.+?)\s+\((.+?):(\d+):(\d+)\)$`)
	// Matches "at path:line:col".
	bareLocationRegex = regexp.MustCompile(`^at\s+(.+?):(\d+):(\d+)$`)
	// Matches "at fn (path)", used by native and anonymous frames.
	namedPathRegex = regexp.MustCompile(`^at\s+(.+?)\s+\((.+?)\)$`)
)

// Parse converts raw log text into a ParsedLog. It never fails: lines it does
// not understand are skipped, and a log without frames yields an empty slice.
func Parse(raw string) ParsedLog {
	parsed := ParsedLog{
		Raw:    raw,
		Frames: []Frame{},
	}

	lines := strings.Split(raw, "\n")

	// 1. Only the first non-empty line may act as the header.
	headerIdx := -1
	for i, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			headerIdx = i
			parsed.ErrorKind, parsed.ErrorMessage = parseHeader(trimmed)
			break
		}
	}
	if headerIdx < 0 {
		return parsed
	}

	// 2. Everything after the header is a frame candidate.
	for _, line := range lines[headerIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if frame, ok := ParseFrame(trimmed); ok {
			parsed.Frames = append(parsed.Frames, frame)
		}
	}

	return parsed
}

// parseHeader splits "<Kind>: <message>". If the line has no such shape the
// whole line becomes the message and the kind stays empty.
func parseHeader(line string) (kind, message string) {
	if matches := headerRegex.FindStringSubmatch(line); len(matches) == 3 {
		return matches[1], strings.TrimSpace(matches[2])
	}
	return "", line
}

// ParseFrame reads one trimmed stack line. The first matching shape wins; a
// line that merely starts with the frame marker is kept as a raw frame.
func ParseFrame(line string) (Frame, bool) {
	if matches := namedLocationRegex.FindStringSubmatch(line); len(matches) == 5 {
		return Frame{
			Function: strings.TrimSpace(matches[1]),
			File:     strings.TrimSpace(matches[2]),
			Line:     atoi(matches[3]),
			Column:   atoi(matches[4]),
			Raw:      line,
		}, true
	}

	if matches := bareLocationRegex.FindStringSubmatch(line); len(matches) == 4 {
		return Frame{
			File:   strings.TrimSpace(matches[1]),
			Line:   atoi(matches[2]),
			Column: atoi(matches[3]),
			Raw:    line,
		}, true
	}

	if matches := namedPathRegex.FindStringSubmatch(line); len(matches) == 3 {
		return Frame{
			Function: strings.TrimSpace(matches[1]),
			File:     strings.TrimSpace(matches[2]),
			Raw:      line,
		}, true
	}

	if strings.HasPrefix(line, frameMarker) {
		return Frame{Raw: line}, true
	}

	return Frame{}, false
}

// atoi parses a digit run, falling back to 0 on overflow.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
