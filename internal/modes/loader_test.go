package modes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingReturnsEmpty(t *testing.T) {
	modes, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(modes) != 0 {
		t.Errorf("expected no modes, got %d", len(modes))
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	modes, err := LoadFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modes != nil {
		t.Errorf("expected nil modes for empty path, got %v", modes)
	}
}

func TestLoadFile_ParsesModes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.yaml")
	content := `
customModes:
  - slug: reviewer
    name: "🔍 Reviewer"
    groups:
      - read
      - group: edit
        file_regex: "\\.go$"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	modes, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(modes) != 1 {
		t.Fatalf("expected 1 mode, got %d", len(modes))
	}
	if modes[0].Slug != "reviewer" {
		t.Errorf("expected slug reviewer, got %q", modes[0].Slug)
	}
}

func TestLoadFile_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.yaml")
	if err := os.WriteFile(path, []byte("not: [valid yaml"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected malformed YAML to error")
	}
}
