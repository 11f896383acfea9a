package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amonks/taskdash/internal/apitest"
	"github.com/amonks/taskdash/internal/logging"
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Serve an in-memory todo service for local use",
	Long: `Serve an in-memory todo service for local use.

The service implements the same HTTP API as the real backend. Data is
lost when the process exits. Use --user name:password to create accounts
at startup.`,
	Args: cobra.NoArgs,
	RunE: runDevServer,
}

var (
	devServerAddr  string
	devServerUsers []string
)

func init() {
	rootCmd.AddCommand(devServerCmd)

	devServerCmd.Flags().StringVar(&devServerAddr, "addr", "127.0.0.1:8080", "Listen address")
	devServerCmd.Flags().StringArrayVar(&devServerUsers, "user", nil, "Create a user (name:password); repeatable")
}

// parseDevUser splits a name:password pair.
func parseDevUser(value string) (string, string, error) {
	name, password, ok := strings.Cut(value, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || password == "" {
		return "", "", fmt.Errorf("invalid --user %q: expected name:password", value)
	}
	return name, password, nil
}

func runDevServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logCfg := cfg.Log
	if logCfg.Level == "" {
		logCfg.Level = "info"
	}
	logger, err := logging.New(logCfg, logging.Options{Verbose: rootVerbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server := apitest.New(apitest.WithLogger(logger.Named("dev-server")))
	for _, value := range devServerUsers {
		name, password, err := parseDevUser(value)
		if err != nil {
			return err
		}
		server.AddUser(name, password)
	}

	return serveUntilDone(cmd.Context(), devServerAddr, server.Handler(), logger)
}

// serveUntilDone serves handler on addr and shuts down gracefully when ctx
// is cancelled.
func serveUntilDone(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	fmt.Printf("Serving todo API on http://%s\n", listener.Addr())
	logger.Info("dev server listening", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("dev server stopped")
	return nil
}
