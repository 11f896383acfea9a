// Package logging builds the zap logger from the [log] config section.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amonks/taskdash/internal/config"
)

// Options adjust the configured logger for the running command.
type Options struct {
	// Verbose forces debug level.
	Verbose bool

	// Fullscreen means stderr belongs to a terminal UI. Without a log file
	// nothing is written.
	Fullscreen bool
}

// New builds a logger from cfg. Logs go to cfg.File when set, otherwise to
// stderr.
func New(cfg config.Log, opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	output := "stderr"
	if cfg.File != "" {
		output = cfg.File
	} else if opts.Fullscreen {
		return zap.NewNop(), nil
	}

	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	switch encoding {
	case "":
		encoding = "console"
	case "console", "json":
	default:
		return nil, fmt.Errorf("log.encoding: unknown encoding %q", cfg.Encoding)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = encoding
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{output}
	zcfg.DisableStacktrace = true
	zcfg.Sampling = nil
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		zcfg.DisableCaller = true
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("taskdash"), nil
}

// ParseLevel maps a config level name to a zap level. Empty means warn.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return zapcore.WarnLevel, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
