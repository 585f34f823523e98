// Package sarif holds the SARIF 2.1.0 objects written for replayed errors:
// one run per report, one rule per error kind, one result per replayed log.
package sarif

// Log is the document root.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []*Run `json:"runs"`
}

// Run groups every replayed log of one invocation.
type Run struct {
	Tool    *Tool     `json:"tool"`
	Results []*Result `json:"results"`
}

type Tool struct {
	Driver *ToolComponent `json:"driver"`
}

// ToolComponent names the replayer and carries the rules seen so far.
type ToolComponent struct {
	Name           string                 `json:"name"`
	Version        *string                `json:"version,omitempty"`
	InformationURI *string                `json:"informationUri,omitempty"`
	Rules          []*ReportingDescriptor `json:"rules,omitempty"`
}

// ReportingDescriptor is the rule for an error kind such as TypeError.
// Help holds the first suggested fix recorded for that kind.
type ReportingDescriptor struct {
	ID               string         `json:"id"`
	Name             *string        `json:"name,omitempty"`
	ShortDescription *MessageString `json:"shortDescription,omitempty"`
	FullDescription  *MessageString `json:"fullDescription,omitempty"`
	Help             *MessageString `json:"help,omitempty"`
	Properties       *PropertyBag   `json:"properties,omitempty"`
}

// Result is one replayed log. Its location is the top user frame.
type Result struct {
	RuleID     string       `json:"ruleId"`
	Message    *Message     `json:"message"`
	Level      Level        `json:"level,omitempty"`
	Locations  []*Location  `json:"locations,omitempty"`
	Properties *PropertyBag `json:"properties,omitempty"`
}

type Location struct {
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
	Message          *Message          `json:"message,omitempty"`
}

type PhysicalLocation struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *Region           `json:"region,omitempty"`
}

// ArtifactLocation is relative to the project root when the frame lies inside it.
type ArtifactLocation struct {
	URI *string `json:"uri,omitempty"`
}

// Region is the frame's line and column, both 1-based. Zero means unknown.
type Region struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

type Message struct {
	Text *string `json:"text,omitempty"`
}

// MessageString is the plain-text form of a multiformat message.
type MessageString struct {
	Text *string `json:"text"`
}

type PropertyBag map[string]interface{}

// Level reflects the sandbox verdict: error when reproduced, note when not,
// warning when the script was never run.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)
