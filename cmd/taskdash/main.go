// Package main implements the taskdash CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/amonks/taskdash/dashboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", dashboard.Describe(err))
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:           "taskdash",
	Short:         "taskdash - a terminal client for the todo service",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	rootBaseURL string
	rootConfig  string
	rootVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootBaseURL, "base-url", "", "API base URL (default from config or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "Path to the global config file")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// exitCode maps an error to the process exit status: 2 when the user has to
// log in, 1 otherwise.
func exitCode(err error) int {
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if dashboard.NeedsLogin(err) {
		return 2
	}
	return 1
}
