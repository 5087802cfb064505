// Where: internal/changeset/render.go
// What: One-line rendering of interpreted change records.
// Why: Make the predicted change list scannable at a glance.
package changeset

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	addLine    = color.New(color.FgHiGreen).SprintFunc()
	modifyLine = color.New(color.FgHiYellow).SprintFunc()
	removeLine = color.New(color.FgHiRed).SprintFunc()
	dimmed     = color.New(color.Faint).SprintFunc()
	bold       = color.New(color.Bold).SprintFunc()
)

// RenderRecord renders one change record as a single line: action, resource
// type, logical id, physical id, scope, and a replacement warning when the
// action would destroy and recreate the resource.
func RenderRecord(record Record) string {
	parts := []string{
		bold(string(record.Action)),
		dimmed(record.ResourceType),
		bold(record.LogicalID),
	}
	if record.PhysicalID != "" {
		parts = append(parts, dimmed(record.PhysicalID))
	}
	if len(record.Scope) > 0 {
		parts = append(parts, bold(strings.Join(record.Scope, ", ")))
	}
	line := strings.Join(parts, " ")

	switch record.Replacement {
	case "True":
		line += " ⚠️  requires replacement"
	case "Conditional":
		line += " ⚠️  may require replacement"
	}

	switch record.Action {
	case ActionAdd:
		return fmt.Sprintf("🌱 %s", addLine(line))
	case ActionModify:
		return fmt.Sprintf("🔧 %s", modifyLine(line))
	case ActionRemove:
		return fmt.Sprintf("✂️  %s", removeLine(line))
	default:
		return line
	}
}

// RenderSummary renders all records, one line each, in their normalized
// order.
func RenderSummary(result Result) []string {
	lines := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		lines = append(lines, RenderRecord(record))
	}
	return lines
}
