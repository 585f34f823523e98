package schemas

// Metadata describes the environment the error was observed in. It only ever
// feeds generated prose; nothing in it is interpreted.
type Metadata struct {
	NodeVersion    string   `json:"nodeVersion,omitempty" mapstructure:"node_version"`
	OS             string   `json:"os,omitempty" mapstructure:"os"`
	RecentCommands []string `json:"recentCommands,omitempty" mapstructure:"recent_commands"`
	CommitHash     string   `json:"commitHash,omitempty" mapstructure:"commit_hash"`
	// Extra holds any keys without a dedicated field.
	Extra map[string]any `json:"extra,omitempty" mapstructure:"extra"`
}

// FirstCommand returns the earliest recorded command, if any.
func (m Metadata) FirstCommand() (string, bool) {
	if len(m.RecentCommands) == 0 {
		return "", false
	}
	return m.RecentCommands[0], true
}

// RunContext is the caller-supplied input for one replay.
type RunContext struct {
	// ErrorLog is the raw stack trace and surrounding text.
	ErrorLog string `json:"errorLog"`
	// ProjectRoot is used as the sandbox working directory and in generated
	// prose. It is never checked against the filesystem.
	ProjectRoot string   `json:"projectRoot,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Artifacts is what a synthesizer produces. Explanation and ReplayScript are
// always non-empty; the Suggested* fields are empty when not produced.
type Artifacts struct {
	Explanation       string   `json:"explanation"`
	ReproductionSteps []string `json:"reproductionSteps"`
	ReplayScript      string   `json:"replayScript"`
	SuggestedFix      string   `json:"suggestedFix,omitempty"`
	SuggestedPatch    string   `json:"suggestedPatch,omitempty"` // Unified diff.
	SuggestedTest     string   `json:"suggestedTest,omitempty"`  // Jest/Vitest-style test file.
}

// Verdict is the outcome of running a replay script in the sandbox.
type Verdict struct {
	// Success is true iff the process exited with code 0.
	Success bool `json:"success"`
	// Reproduced is true when the process exited non-zero or wrote anything
	// to stderr.
	Reproduced bool   `json:"reproduced"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	// ExitCode is nil when the process was killed or never started.
	ExitCode *int `json:"exitCode"`
}

// Result merges the synthesized artifacts with the optional sandbox verdict.
type Result struct {
	Artifacts
	// SandboxResult is set iff the replay was not a dry run.
	SandboxResult *Verdict `json:"sandboxResult,omitempty"`
	// ScriptWarnings lists non-fatal problems found in the replay script.
	ScriptWarnings []string `json:"scriptWarnings,omitempty"`
	// RunID correlates log lines for one replay.
	RunID string `json:"runId,omitempty"`
}
