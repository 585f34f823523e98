// internal/watch/collector.go
package watch

import (
	"regexp"
	"strings"
)

// traceHeaderRegex marks the first line of a JavaScript error report.
var traceHeaderRegex = regexp.MustCompile(`^\w*Error: `)

const frameMarker = "at "

// collector cuts stack traces out of a stream of log lines. A trace is a
// header line followed by one or more frame lines; headers without frames
// are ordinary log messages and are dropped.
type collector struct {
	lines []string
}

// feed consumes one line and returns a trace completed by it, if any.
func (c *collector) feed(line string) (string, bool) {
	if len(c.lines) > 0 && strings.HasPrefix(strings.TrimSpace(line), frameMarker) {
		c.lines = append(c.lines, line)
		return "", false
	}

	trace, done := c.flush()
	if traceHeaderRegex.MatchString(line) {
		c.lines = append(c.lines, line)
	}
	return trace, done
}

// flush ends the current trace.
func (c *collector) flush() (string, bool) {
	lines := c.lines
	c.lines = nil
	if len(lines) < 2 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// pending reports whether a trace is being collected.
func (c *collector) pending() bool {
	return len(c.lines) > 0
}
