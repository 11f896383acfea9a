package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EnsureHomeDirs creates the default state and config directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	if err := os.MkdirAll(filepath.Join(homeDir, ".local", "state", "taskdash"), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(homeDir, ".config", "taskdash"), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}

// SetupTestHome creates a temp home directory, ensures state/config dirs,
// sets HOME, and clears the environment overrides taskdash reads.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range overrideVars {
		t.Setenv(key, "")
	}
	return homeDir
}

var overrideVars = []string{
	"TASKDASH_CONFIG",
	"TASKDASH_STATE_DIR",
	"TASKDASH_BASE_URL",
	"BASE_URL",
	"XDG_STATE_HOME",
}
