package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/taskdash/internal/config"
	"github.com/amonks/taskdash/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("expected empty base URL, got %q", cfg.API.BaseURL)
	}
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("expected local zone, got %v (%v)", loc, err)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), `
[api]
base-url = "http://todo.internal:9000"
request-timeout = "5s"
requests-per-second = 2.5

[dashboard]
poll-interval = "30s"
timezone = "UTC"

[log]
level = "debug"
encoding = "json"
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.BaseURL != "http://todo.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if timeout, _ := cfg.Timeout(); timeout != 5*time.Second {
		t.Errorf("Timeout = %v, expected 5s", timeout)
	}
	if cfg.API.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.API.RequestsPerSecond)
	}
	if interval, _ := cfg.PollInterval(); interval != 30*time.Second {
		t.Errorf("PollInterval = %v, expected 30s", interval)
	}
	if loc, _ := cfg.Location(); loc != time.UTC {
		t.Errorf("Location = %v, expected UTC", loc)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Encoding != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "taskdash", "config.toml"), `
[api]
base-url = "http://global:8080"
requests-per-second = 1

[log]
level = "info"
`)
	writeFile(t, filepath.Join(tmpDir, config.ProjectFile), `
[api]
base-url = "http://project:8080"
requests-per-second = 0
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.API.BaseURL != "http://project:8080" {
		t.Errorf("BaseURL = %q, expected project value", cfg.API.BaseURL)
	}
	if cfg.API.RequestsPerSecond != 0 {
		t.Errorf("RequestsPerSecond = %v, expected project zero to win", cfg.API.RequestsPerSecond)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, expected global value", cfg.Log.Level)
	}
}

func TestLoad_ConfigEnvOverride(t *testing.T) {
	testsupport.SetupTestHome(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[api]\nbase-url = \"http://custom\"\n")
	t.Setenv("TASKDASH_CONFIG", path)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.API.BaseURL != "http://custom" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":   "[api\nbase-url = 1",
		"duration": "[api]\nrequest-timeout = \"soon\"",
		"timezone": "[dashboard]\ntimezone = \"Mars/Olympus\"",
		"negative": "[api]\nrequests-per-second = -1",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			testsupport.SetupTestHome(t)
			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, config.ProjectFile), content)
			if _, err := config.Load(tmpDir); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	cfg := &config.Config{API: config.API{BaseURL: "http://from-config"}}
	t.Setenv("TASKDASH_BASE_URL", "")
	t.Setenv("BASE_URL", "")

	if got := cfg.ResolveBaseURL(""); got != "http://from-config" {
		t.Errorf("expected config value, got %q", got)
	}

	t.Setenv("BASE_URL", "http://from-base-url")
	if got := cfg.ResolveBaseURL(""); got != "http://from-base-url" {
		t.Errorf("expected BASE_URL, got %q", got)
	}

	t.Setenv("TASKDASH_BASE_URL", "http://from-env")
	if got := cfg.ResolveBaseURL(""); got != "http://from-env" {
		t.Errorf("expected TASKDASH_BASE_URL, got %q", got)
	}

	if got := cfg.ResolveBaseURL("http://from-flag"); got != "http://from-flag" {
		t.Errorf("expected flag value, got %q", got)
	}
}
