// internal/synth/heuristic.go
package synth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/stacktrace"
)

const (
	defaultErrorKind    = "Error"
	defaultErrorMessage = "Unknown error"
)

// syntheticPathRegex matches locations V8 prints for frames with no real
// module behind them, e.g. "<anonymous>" or "index 0".
var syntheticPathRegex = regexp.MustCompile(`^(<.*>|index \d+|native)$`)

// BuildHeuristic is the pure form of Heuristic.Synthesize: the same inputs
// always produce the same artifacts.
func BuildHeuristic(parsed stacktrace.ParsedLog, rc schemas.RunContext) schemas.Artifacts {
	top, hasTop := stacktrace.TopUserFrame(parsed)
	var topFrame *stacktrace.Frame
	if hasTop {
		topFrame = &top
	}

	return schemas.Artifacts{
		Explanation:       buildExplanation(parsed, topFrame),
		ReproductionSteps: buildReproductionSteps(topFrame, rc),
		ReplayScript:      buildReplayScript(parsed, topFrame),
		SuggestedFix:      buildSuggestedFix(parsed, topFrame),
	}
}

func errorKind(parsed stacktrace.ParsedLog) string {
	if parsed.ErrorKind == "" {
		return defaultErrorKind
	}
	return parsed.ErrorKind
}

func errorMessage(parsed stacktrace.ParsedLog) string {
	if parsed.ErrorMessage == "" {
		return defaultErrorMessage
	}
	return parsed.ErrorMessage
}

// location renders "path:line", with "?" for an unknown line.
func location(frame *stacktrace.Frame) string {
	line := "?"
	if frame.Line > 0 {
		line = strconv.Itoa(frame.Line)
	}
	return frame.File + ":" + line
}

func buildExplanation(parsed stacktrace.ParsedLog, topFrame *stacktrace.Frame) string {
	where := "unknown location"
	inFunction := ""
	if topFrame != nil {
		where = location(topFrame)
		if topFrame.Function != "" {
			inFunction = fmt.Sprintf(" in function \"%s\"", topFrame.Function)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s occurred: \"%s\"\n\n", errorKind(parsed), errorMessage(parsed))
	fmt.Fprintf(&sb, "This error was thrown at %s%s.\n\n", where, inFunction)
	sb.WriteString("The error likely indicates a runtime issue in your code. Review the stack trace and the code at the specified location for potential bugs.")
	return sb.String()
}

func buildReproductionSteps(topFrame *stacktrace.Frame, rc schemas.RunContext) []string {
	var steps []string

	if rc.ProjectRoot != "" {
		steps = append(steps, "Navigate to project directory: "+rc.ProjectRoot)
	}

	if command, ok := rc.Metadata.FirstCommand(); ok {
		steps = append(steps, "Run the command that triggered the error: "+command)
	} else {
		steps = append(steps, "Run the application or script that triggered this error")
	}

	if topFrame != nil && topFrame.File != "" {
		steps = append(steps, "Execute the code path that reaches "+location(topFrame))
	}

	return append(steps, "Observe the error occurring with the same stack trace")
}

// isCallableName reports whether a frame's function name can be looked up on
// a module namespace. Anonymous and "new X"/"async x" forms are rejected.
func isCallableName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "<> \t")
}

func buildReplayScript(parsed stacktrace.ParsedLog, topFrame *stacktrace.Frame) string {
	lines := []string{
		"#!/usr/bin/env node",
		"",
		"/**",
		" * Auto-generated replay script",
		" * This script attempts to reproduce the error heuristically.",
		" */",
		"",
	}

	if topFrame != nil && topFrame.File != "" && !syntheticPathRegex.MatchString(topFrame.File) {
		lines = append(lines,
			"// Attempting to load the module where the error occurred",
			"try {",
			"  const module = await import("+jsString(topFrame.File)+");",
		)

		if isCallableName(topFrame.Function) {
			lookup := "module[" + jsString(topFrame.Function) + "]"
			// "Class.method" frames usually export the bare method name.
			if idx := strings.LastIndex(topFrame.Function, "."); idx >= 0 && idx < len(topFrame.Function)-1 {
				lookup += " ?? module[" + jsString(topFrame.Function[idx+1:]) + "]"
			}
			lines = append(lines,
				"  // Attempting to call the function where the error occurred",
				"  const target = "+lookup+";",
				"  if (typeof target === 'function') {",
				"    await target();",
				"  }",
			)
		}

		lines = append(lines,
			"} catch (err) {",
			"  console.error('Replay error:', err);",
			"  process.exit(1);",
			"}",
		)
		return strings.Join(lines, "\n")
	}

	// Fallback: throw an error of the same kind. Unknown kinds degrade to Error.
	kind := errorKind(parsed)
	lines = append(lines,
		"// No specific file/function identified, throwing the same error type",
		"const candidate = globalThis["+jsString(kind)+"];",
		"const ErrorType = typeof candidate === 'function' ? candidate : Error;",
		"const replayError = new ErrorType("+jsString(errorMessage(parsed))+");",
		"replayError.name = "+jsString(kind)+";",
		"throw replayError;",
	)
	return strings.Join(lines, "\n")
}

// Fix guidance per error category.
var (
	nullAccessFixes = []string{
		"- Check for null/undefined values before accessing properties or calling methods",
		"- Verify that variables have the expected type",
		"- Add type guards or null checks",
	}
	undefinedReferenceFixes = []string{
		"- Ensure the variable or function is defined before use",
		"- Check for typos in variable names",
		"- Verify imports are correct",
	}
	syntaxFixes = []string{
		"- Review the syntax at the error location",
		"- Check for missing brackets, parentheses, or quotes",
		"- Ensure proper use of async/await or Promises",
	}
	genericFixes = []string{
		"- Review the code at the error location",
		"- Add error handling (try/catch)",
		"- Check input validation",
	}
)

func buildSuggestedFix(parsed stacktrace.ParsedLog, topFrame *stacktrace.Frame) string {
	var suggestions []string
	switch errorKind(parsed) {
	case "TypeError":
		suggestions = append(suggestions, nullAccessFixes...)
	case "ReferenceError":
		suggestions = append(suggestions, undefinedReferenceFixes...)
	case "SyntaxError":
		suggestions = append(suggestions, syntaxFixes...)
	default:
		suggestions = append(suggestions, genericFixes...)
	}

	if topFrame != nil {
		suggestions = append(suggestions, fmt.Sprintf("- Examine %s for the root cause", location(topFrame)))
	}

	return strings.Join(suggestions, "\n")
}
