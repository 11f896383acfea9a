package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommandPrecedence(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	if diff := cmp.Diff([]string{"vi"}, Command()); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("EDITOR", "nano")
	if diff := cmp.Diff([]string{"nano"}, Command()); diff != "" {
		t.Fatalf("EDITOR mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("VISUAL", "code --wait")
	if diff := cmp.Diff([]string{"code", "--wait"}, Command()); diff != "" {
		t.Fatalf("VISUAL mismatch (-want +got):\n%s", diff)
	}
}

// fakeEditor installs a shell script as the editor. The script replaces the
// edited file with content.
func fakeEditor(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	replacement := filepath.Join(dir, "replacement.md")
	if err := os.WriteFile(replacement, []byte(content), 0o644); err != nil {
		t.Fatalf("write replacement: %v", err)
	}
	script := filepath.Join(dir, "editor.sh")
	body := "#!/bin/sh\ncp '" + replacement + "' \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "sh "+script)
}

func TestEditTaskReadsEditedFile(t *testing.T) {
	fakeEditor(t, "title = \"From editor\"\ndue = \"tomorrow\"\npriority = \"high\"\nstatus = \"done\"\n---\nSome notes\n")

	parsed, err := EditTask(DefaultCreateData())
	if err != nil {
		t.Fatalf("EditTask: %v", err)
	}
	want := &ParsedTask{
		Title:       "From editor",
		Due:         "tomorrow",
		Priority:    "High",
		Status:      "Completed",
		Description: "Some notes",
	}
	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Fatalf("parsed mismatch (-want +got):\n%s", diff)
	}
}

func TestEditTaskRejectsEmptyTitle(t *testing.T) {
	fakeEditor(t, "title = \"\"\npriority = \"Medium\"\n---\n")

	if _, err := EditTask(DefaultCreateData()); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestEditReportsEditorFailure(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "false")

	err := Edit(filepath.Join(t.TempDir(), "task.md"))
	if err == nil || !strings.Contains(err.Error(), "exited with status 1") {
		t.Fatalf("expected exit status error, got %v", err)
	}
}
