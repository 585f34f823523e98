// internal/stacktrace/classify.go
package stacktrace

import "strings"

// Heuristic markers for frames that do not belong to the user's code.
const (
	runtimePrefix       = "node:"
	internalPrefix      = "internal/"
	dependencyDirMarker = "node_modules"
)

// TopUserFrame returns the first frame, in stored order, that points into the
// user's own code. Frames without a file path count as internal. The boolean
// is false when every frame is internal or there are no frames.
func TopUserFrame(parsed ParsedLog) (Frame, bool) {
	for _, frame := range parsed.Frames {
		if IsUserFrame(frame) {
			return frame, true
		}
	}
	return Frame{}, false
}

// IsUserFrame reports whether the frame's path lies outside the runtime and
// outside any dependency tree.
func IsUserFrame(frame Frame) bool {
	path := frame.File
	if path == "" {
		return false
	}
	return !strings.HasPrefix(path, runtimePrefix) &&
		!strings.HasPrefix(path, internalPrefix) &&
		!strings.Contains(path, dependencyDirMarker)
}
