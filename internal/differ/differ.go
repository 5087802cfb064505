// Where: internal/differ/differ.go
// What: Template text diffing, built-in or via an external tool.
// Why: Show exactly how the local template departs from the deployed one.
package differ

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// EnvDiffTool names the environment variable that selects an external diff
// command. The value is split on whitespace; the first element is the
// program, the rest are leading arguments.
const EnvDiffTool = "STACKDIFF_DIFFER"

// ErrDiffTool is returned when the external diff tool cannot be located or
// launched.
var ErrDiffTool = errors.New("diff tool failed")

// Differ produces a textual diff between the deployed template body and the
// local template file.
type Differ struct {
	// Tool overrides the external diff command. When empty the EnvDiffTool
	// environment variable is consulted, and when that is unset the
	// built-in unified diff is used.
	Tool string
}

// Diff compares the remote template body against the local template file.
// localPath must point at a readable file; remoteBody is the text fetched
// from the stack. An empty result means the two are identical.
func (d Differ) Diff(remoteBody, localPath string) (string, error) {
	tool := d.Tool
	if tool == "" {
		tool = os.Getenv(EnvDiffTool)
	}
	if tool == "" {
		localBody, err := os.ReadFile(localPath)
		if err != nil {
			return "", fmt.Errorf("read local template: %w", err)
		}
		return Unified(remoteBody, string(localBody), localPath)
	}
	return external(tool, remoteBody, localPath)
}

// Unified renders a unified diff with remote/local labels and three lines of
// context. The remote side is treated as the old text.
func Unified(remoteBody, localBody, localPath string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(remoteBody),
		B:        difflib.SplitLines(localBody),
		FromFile: "remote: deployed template",
		ToFile:   "local: " + localPath,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render diff: %w", err)
	}
	return text, nil
}

// external writes the remote body to a temp file carrying the local file's
// extension, then runs the configured tool with remote and local paths
// appended. Exit status 1 conventionally means "differences found" and is
// not an error; only a launch failure is.
func external(tool, remoteBody, localPath string) (string, error) {
	fields := strings.Fields(tool)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty command %q", ErrDiffTool, tool)
	}
	program, args := fields[0], fields[1:]

	tmp, err := os.CreateTemp("", "stackdiff-remote-*"+filepath.Ext(localPath))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(remoteBody); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	cmd := exec.Command(program, append(args, tmp.Name(), localPath)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: launch %q: %v", ErrDiffTool, program, err)
		}
		// The tool ran; nonzero exit means it found differences.
	}
	return stdout.String(), nil
}
