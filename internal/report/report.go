// Where: internal/report/report.go
// What: Final report composition for one preview run.
// Why: One place decides between "no changes" and the combined summary.
package report

import (
	"fmt"
	"io"

	"github.com/stackdiff/stackdiff/internal/changeset"
	"github.com/stackdiff/stackdiff/internal/ui"
)

// Report combines the interpreted changeset with the template diff.
type Report struct {
	StackName string
	Changes   changeset.Result
	Diff      string
}

// Empty reports whether the preview found nothing at all: no resource
// changes and an identical template.
func (r Report) Empty() bool {
	return r.Changes.Status == changeset.StatusNoChanges && r.Diff == ""
}

// Render writes the report. An empty report prints a single notice; the
// tool reports differences, it never fails on them.
func Render(out io.Writer, r Report) {
	console := ui.New(out)

	if r.Empty() {
		console.Success(fmt.Sprintf("No changes for stack %s", r.StackName))
		return
	}

	if len(r.Changes.Records) > 0 {
		console.Header("📋", fmt.Sprintf("Resource changes for stack %s:", r.StackName))
		for _, line := range changeset.RenderSummary(r.Changes) {
			console.ItemPlain(line)
		}
	}

	if r.Diff != "" {
		if len(r.Changes.Records) > 0 {
			fmt.Fprintln(out)
		}
		console.Header("📄", "Template diff:")
		fmt.Fprint(out, r.Diff)
	}
}
