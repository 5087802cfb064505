// Where: internal/differ/differ_test.go
// What: Tests for built-in and external template diffing.
// Why: Identical texts must yield an empty diff and tool failures must be
//      distinguished from "differences found" exits.
package differ

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func TestUnifiedIdenticalTexts(t *testing.T) {
	body := "Resources:\n  Table:\n    Type: AWS::DynamoDB::Table\n"
	diff, err := Unified(body, body, "template.yml")
	if err != nil {
		t.Fatalf("unified diff: %v", err)
	}
	if diff != "" {
		t.Fatalf("expected empty diff, got %q", diff)
	}
}

func TestUnifiedSingleCharacterChange(t *testing.T) {
	before := "Resources:\n  Table:\n    Properties:\n      TableName: test\n"
	after := "Resources:\n  Table:\n    Properties:\n      TableName: test2\n"

	diff, err := Unified(before, after, "template.yml")
	if err != nil {
		t.Fatalf("unified diff: %v", err)
	}
	if diff == "" {
		t.Fatalf("expected non-empty diff")
	}
	if !strings.Contains(diff, "-      TableName: test\n") {
		t.Fatalf("missing removed line in diff:\n%s", diff)
	}
	if !strings.Contains(diff, "+      TableName: test2\n") {
		t.Fatalf("missing added line in diff:\n%s", diff)
	}
	if !strings.Contains(diff, "remote: deployed template") {
		t.Fatalf("missing remote label in diff:\n%s", diff)
	}
}

func TestDiffFallsBackToBuiltin(t *testing.T) {
	path := writeTemplate(t, "a\nb\n")
	t.Setenv(EnvDiffTool, "")

	diff, err := Differ{}.Diff("a\nb\n", path)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if diff != "" {
		t.Fatalf("expected empty diff, got %q", diff)
	}
}

func TestDiffExternalToolDifferences(t *testing.T) {
	if _, err := os.Stat("/usr/bin/diff"); err != nil {
		t.Skip("diff not available")
	}
	path := writeTemplate(t, "a\nb\nc\n")

	diff, err := Differ{Tool: "/usr/bin/diff -u"}.Diff("a\nb\n", path)
	if err != nil {
		t.Fatalf("external diff: %v", err)
	}
	if !strings.Contains(diff, "+c") {
		t.Fatalf("expected added line in diff:\n%s", diff)
	}
}

func TestDiffExternalToolMissing(t *testing.T) {
	path := writeTemplate(t, "a\n")

	_, err := Differ{Tool: "definitely-not-a-real-differ"}.Diff("a\n", path)
	if !errors.Is(err, ErrDiffTool) {
		t.Fatalf("expected ErrDiffTool, got %v", err)
	}
}
