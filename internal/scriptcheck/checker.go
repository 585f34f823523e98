// internal/scriptcheck/checker.go
package scriptcheck

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.uber.org/zap"
)

// maxReported caps the number of warnings returned for one script.
const maxReported = 3

// Checker parses replay scripts with the tree-sitter JavaScript grammar and
// reports where the parse failed. It never rejects a script.
type Checker struct {
	logger *zap.Logger
}

// New creates a Checker.
func New(logger *zap.Logger) *Checker {
	return &Checker{logger: logger.Named("scriptcheck")}
}

// Check returns one warning per source line holding a syntax error, or nil
// when the script parses cleanly.
func (c *Checker) Check(ctx context.Context, script string) []string {
	if script == "" {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	source := []byte(script)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		c.logger.Debug("Tree-sitter could not parse replay script.", zap.Error(err))
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	lines := errorLines(root, nil)
	warnings := make([]string, 0, len(lines))
	for _, line := range lines {
		warnings = append(warnings, fmt.Sprintf("replay script has syntax errors near line %d", line))
	}

	c.logger.Warn("Replay script has syntax errors.", zap.Strings("warnings", warnings))
	return warnings
}

// errorLines collects the 1-based lines of ERROR and MISSING nodes in
// document order, without duplicates.
func errorLines(node *sitter.Node, lines []int) []int {
	if len(lines) >= maxReported {
		return lines
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		line := int(node.StartPoint().Row) + 1
		if len(lines) == 0 || lines[len(lines)-1] != line {
			lines = append(lines, line)
		}
		return lines
	}
	if !node.HasError() {
		return lines
	}

	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()
	if cursor.GoToFirstChild() {
		for {
			lines = errorLines(cursor.CurrentNode(), lines)
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}
	return lines
}
