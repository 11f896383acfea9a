// Package editor opens task templates in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Command returns the editor command line: $VISUAL, then $EDITOR, then vi.
// The value may carry arguments, as in "code --wait".
func Command() []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(name)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// Edit opens path in the editor and waits for it to exit.
func Edit(path string) error {
	argv := append(Command(), path)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %s exited with status %d", argv[0], exitErr.ExitCode())
		}
		return fmt.Errorf("run editor %s: %w", argv[0], err)
	}
	return nil
}
