package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/amonks/taskdash/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", name, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdash.log")

	logger, err := New(config.Log{Level: "info", File: path, Encoding: "json"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("refreshed tasks")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"refreshed tasks"`) {
		t.Fatalf("expected json entry, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug entry to be filtered, got %q", out)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdash.log")

	logger, err := New(config.Log{File: path}, Options{Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("request sent")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "request sent") {
		t.Fatalf("expected debug entry, got %q", string(data))
	}
}

func TestNewFullscreenWithoutFileIsSilent(t *testing.T) {
	logger, err := New(config.Log{}, Options{Fullscreen: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected no-op logger")
	}
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	if _, err := New(config.Log{Encoding: "xml"}, Options{}); err == nil {
		t.Fatal("expected error")
	}
}
