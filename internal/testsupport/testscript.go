package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/amonks/taskdash/internal/apitest"
	"github.com/amonks/taskdash/task"
)

var (
	buildOnce    sync.Once
	taskdashPath string
	buildErr     error
)

// BuildTaskdash builds the taskdash binary once and returns its path.
func BuildTaskdash(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "taskdash-bin-")
		if err != nil {
			buildErr = err
			return
		}

		taskdashPath = filepath.Join(binDir, "taskdash")
		cmd := exec.Command("go", "build", "-o", taskdashPath, "./cmd/taskdash")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build taskdash: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return taskdashPath
}

// SetupScriptEnv configures common environment variables for testscript and
// starts an in-memory todo service for the script. A user "alice" with
// password "wonderland" is registered.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TASKDASH", BuildTaskdash(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("XDG_STATE_HOME", "")
	env.Setenv("TASKDASH_STATE_DIR", "")
	env.Setenv("TASKDASH_CONFIG", "")
	env.Setenv("BASE_URL", "")
	env.Setenv("NO_COLOR", "1")
	env.Setenv("TZ", "UTC")

	server := apitest.New()
	server.AddUser("alice", "wonderland")
	ts := httptest.NewServer(server.Handler())
	env.Defer(ts.Close)
	env.Setenv("TASKDASH_BASE_URL", ts.URL)
	env.Values[serverKey{}] = server
	return nil
}

type serverKey struct{}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTaskID finds a task by title in a JSON task list and stores its ID in
// an env var.
func CmdTaskID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("taskid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: taskid FILE TITLE VAR")
	}

	var items []task.Task
	data := ts.ReadFile(args[0])
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}

	title := args[1]
	for _, item := range items {
		if item.Title == title {
			ts.Setenv(args[2], item.ID.String())
			return
		}
	}

	ts.Fatalf("task with title %q not found", title)
}

// CmdRevokeSessions invalidates every token issued by the script's server.
func CmdRevokeSessions(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("revoke does not support negation")
	}
	if len(args) != 0 {
		ts.Fatalf("usage: revoke")
	}
	server, ok := ts.Value(serverKey{}).(*apitest.Server)
	if !ok {
		ts.Fatalf("no server in script environment")
	}
	server.RevokeTokens()
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
