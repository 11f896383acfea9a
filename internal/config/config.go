// Package config handles loading taskdash.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/taskdash/internal/paths"
)

// ProjectFile is the name of the per-directory config file.
const ProjectFile = "taskdash.toml"

// Config represents the taskdash.toml configuration file.
type Config struct {
	API       API       `toml:"api"`
	Dashboard Dashboard `toml:"dashboard"`
	Log       Log       `toml:"log"`
}

// API configures the connection to the todo service.
type API struct {
	// BaseURL is the service root, e.g. http://localhost:8080.
	BaseURL string `toml:"base-url"`

	// RequestTimeout bounds each HTTP request. Empty means no timeout.
	RequestTimeout string `toml:"request-timeout"`

	// RequestsPerSecond caps outbound requests. Zero means unlimited.
	RequestsPerSecond float64 `toml:"requests-per-second"`
}

// Dashboard configures the interactive dashboard.
type Dashboard struct {
	// PollInterval is how often the task list is re-fetched.
	PollInterval string `toml:"poll-interval"`

	// Timezone names the zone used for calendar days. Empty or "Local"
	// uses the system zone.
	Timezone string `toml:"timezone"`
}

// Log configures diagnostic logging.
type Log struct {
	Level    string `toml:"level"`
	File     string `toml:"file"`
	Encoding string `toml:"encoding"`
}

// Load loads configuration from the global config file and dir's
// taskdash.toml, the latter taking precedence for every key it defines.
// Returns an empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return LoadFiles(globalPath, filepath.Join(dir, ProjectFile))
}

// LoadFiles merges an explicit global and project file. Missing files are
// treated as empty.
func LoadFiles(globalPath, projectPath string) (*Config, error) {
	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(projectPath)
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	if err := merged.validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// GlobalPath returns the path of the per-user config file. TASKDASH_CONFIG
// overrides the default location.
func GlobalPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("TASKDASH_CONFIG")); path != "" {
		return path, nil
	}
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.API.BaseURL = mergeString(projectMeta.IsDefined("api", "base-url"), projectCfg.API.BaseURL, globalCfg.API.BaseURL)
	merged.API.RequestTimeout = mergeString(projectMeta.IsDefined("api", "request-timeout"), projectCfg.API.RequestTimeout, globalCfg.API.RequestTimeout)
	merged.API.RequestsPerSecond = globalCfg.API.RequestsPerSecond
	if projectMeta.IsDefined("api", "requests-per-second") {
		merged.API.RequestsPerSecond = projectCfg.API.RequestsPerSecond
	}
	merged.Dashboard.PollInterval = mergeString(projectMeta.IsDefined("dashboard", "poll-interval"), projectCfg.Dashboard.PollInterval, globalCfg.Dashboard.PollInterval)
	merged.Dashboard.Timezone = mergeString(projectMeta.IsDefined("dashboard", "timezone"), projectCfg.Dashboard.Timezone, globalCfg.Dashboard.Timezone)
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.File = mergeString(projectMeta.IsDefined("log", "file"), projectCfg.Log.File, globalCfg.Log.File)
	merged.Log.Encoding = mergeString(projectMeta.IsDefined("log", "encoding"), projectCfg.Log.Encoding, globalCfg.Log.Encoding)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func (c *Config) validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests-per-second must not be negative")
	}
	return nil
}

// ResolveBaseURL picks the API base URL: the flag value, then
// TASKDASH_BASE_URL, then BASE_URL, then the config file.
func (c *Config) ResolveBaseURL(flagValue string) string {
	for _, candidate := range []string{
		flagValue,
		os.Getenv("TASKDASH_BASE_URL"),
		os.Getenv("BASE_URL"),
		c.API.BaseURL,
	} {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}

// Timeout returns the parsed request timeout, or zero for none.
func (c *Config) Timeout() (time.Duration, error) {
	return parseDuration("api.request-timeout", c.API.RequestTimeout, 0)
}

// PollInterval returns the parsed poll interval, or zero for the default.
func (c *Config) PollInterval() (time.Duration, error) {
	return parseDuration("dashboard.poll-interval", c.Dashboard.PollInterval, 0)
}

// Location returns the configured calendar zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Dashboard.Timezone
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return loc, nil
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
