// internal/llmutil/parser.go
package llmutil

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// json mirrors encoding/json semantics so struct tags behave the same way.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// jsonObjectRegex extracts a JSON object if the response is wrapped in markdown.
	jsonObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")

	// codeBlockRegex extracts content wrapped in markdown, supporting language tags (js, javascript, diff, ts, etc.).
	codeBlockRegex = regexp.MustCompile("(?s)^\x60\x60\x60[a-zA-Z]*[^\\n]*\\n(.*?)\\s*\x60\x60\x60\\s*$")
)

// ParseJSONObject attempts to parse an LLM reply holding a single JSON object
// into T. It tolerates markdown fences and conversational text around the
// object.
func ParseJSONObject[T any](response string) (*T, error) {
	response = strings.TrimSpace(response)
	jsonStringToParse := response

	// 1. Handle markdown wrapping (most common case).
	if strings.HasPrefix(response, "```") {
		if matches := jsonObjectRegex.FindStringSubmatch(response); len(matches) > 1 {
			jsonStringToParse = matches[1]
		}
	} else if !strings.HasPrefix(response, "{") {
		// 2. Attempt to find the object within conversational text.
		first := strings.Index(response, "{")
		last := strings.LastIndex(response, "}")
		if first != -1 && last > first {
			jsonStringToParse = response[first : last+1]
		}
	}

	// 3. Unmarshal
	var result T
	if err := json.Unmarshal([]byte(jsonStringToParse), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM JSON response: %w. Extracted JSON (truncated): %s", err, truncateString(jsonStringToParse, 500))
	}

	return &result, nil
}

// CleanCodeOutput removes a surrounding markdown fence (```js, ```diff, ...)
// from a code or patch string. Unfenced content is returned trimmed.
func CleanCodeOutput(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	matches := codeBlockRegex.FindStringSubmatch(content)
	if len(matches) < 2 {
		return content
	}
	cleaned := strings.TrimSpace(matches[1])
	// 'git apply' wants exactly one trailing newline on a patch.
	if strings.Contains(cleaned, "--- a/") && strings.Contains(cleaned, "+++ b/") {
		return cleaned + "\n"
	}
	return cleaned
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	// Simple truncation; does not account for rune boundaries but sufficient for error logging.
	return s[:maxLen] + "..."
}
