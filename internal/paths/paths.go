package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultStateDir returns the directory holding the saved session.
// TASKDASH_STATE_DIR wins, then $XDG_STATE_HOME/taskdash, then
// ~/.local/state/taskdash.
func DefaultStateDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("TASKDASH_STATE_DIR")); dir != "" {
		return dir, nil
	}
	if base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); base != "" {
		return filepath.Join(base, "taskdash"), nil
	}

	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "taskdash"), nil
}

// DefaultConfigDir returns the directory holding the global config file.
func DefaultConfigDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "taskdash"), nil
}

// HomeDir returns the user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}
