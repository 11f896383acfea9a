package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/amonks/taskdash/api"
	"github.com/amonks/taskdash/dashboard"
	"github.com/amonks/taskdash/internal/config"
	"github.com/amonks/taskdash/internal/logging"
	"github.com/amonks/taskdash/internal/paths"
	"github.com/amonks/taskdash/session"
	"github.com/amonks/taskdash/task"
)

// app bundles what a command needs to talk to the todo service.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *api.Client
	dash   *dashboard.Dashboard
}

type appOptions struct {
	// fullscreen discards stderr logging unless a log file is configured.
	fullscreen bool
}

// loadConfig reads the global and project config. --config replaces the
// global file.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if rootConfig != "" {
		return config.LoadFiles(rootConfig, filepath.Join(cwd, config.ProjectFile))
	}
	return config.Load(cwd)
}

func openApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, logging.Options{Verbose: rootVerbose, Fullscreen: opts.fullscreen})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	store := session.NewFileStore(stateDir)
	sess, err := session.Open(store)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", store.Path(), err)
	}

	client := api.NewClient(cfg.ResolveBaseURL(rootBaseURL), sess,
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.API.RequestsPerSecond),
		api.WithLocation(loc),
	)
	logger.Debug("opened client",
		zap.String("base_url", client.BaseURL()),
		zap.String("state_dir", stateDir),
		zap.Bool("logged_in", sess.Present()),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		dash:   dashboard.New(client, sess, dashboard.WithLocation(loc), dashboard.WithLogger(logger)),
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
}

// findTask loads the task list and returns the task with the given ID.
func (a *app) findTask(ctx context.Context, rawID string) (task.Task, error) {
	if err := a.dash.Refresh(ctx); err != nil {
		return task.Task{}, err
	}
	return a.lookup(rawID)
}

// lookup resolves an ID against the already loaded tasks.
func (a *app) lookup(rawID string) (task.Task, error) {
	id := task.ID(strings.TrimSpace(rawID))
	if id.IsZero() {
		return task.Task{}, fmt.Errorf("task id is required")
	}
	t, ok := a.dash.Find(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return t, nil
}
