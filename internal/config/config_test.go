// Where: internal/config/config_test.go
// What: Tests for stackdiff.yml loading and validation.
// Why: A typoed key must fail loudly; an absent file must be a non-event.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
stack: my-stack
parameters:
  Stage: prod
capabilities:
  - CAPABILITY_IAM
changeset_name: preview
no_change_patterns:
  - nothing to do
differ: diff -u
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Stack != "my-stack" {
		t.Fatalf("unexpected stack: %s", cfg.Stack)
	}
	if cfg.Parameters["Stage"] != "prod" {
		t.Fatalf("unexpected parameters: %#v", cfg.Parameters)
	}
	if cfg.ChangesetName != "preview" {
		t.Fatalf("unexpected changeset name: %s", cfg.ChangesetName)
	}
	if len(cfg.NoChangePatterns) != 1 || cfg.NoChangePatterns[0] != "nothing to do" {
		t.Fatalf("unexpected patterns: %v", cfg.NoChangePatterns)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "stack: my-stack\nstak_name: typo\n")

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error for unknown key")
	}
	if !strings.Contains(err.Error(), "validate config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadCapability(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "capabilities: [CAPABILITY_ROOT]\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown capability")
	}
}

func TestDiscoverNextToTemplate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "stack: from-template-dir\n")

	cfg, err := Discover(filepath.Join(dir, "template.yml"))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Stack != "from-template-dir" {
		t.Fatalf("unexpected stack: %s", cfg.Stack)
	}
}

func TestDiscoverMissingFileIsEmptyConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Discover(filepath.Join(t.TempDir(), "template.yml"))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Stack != "" {
		t.Fatalf("expected empty config, got %#v", cfg)
	}
}

func TestDiscoverInvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "stack: 42\n")

	if _, err := Discover(filepath.Join(dir, "template.yml")); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}
