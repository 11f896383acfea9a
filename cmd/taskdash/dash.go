package main

import (
	"github.com/spf13/cobra"

	"github.com/amonks/taskdash/internal/dashtui"
	"github.com/amonks/taskdash/internal/prompt"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive dashboard.

Logs in first when no session is stored. Logs are discarded while the
dashboard is open unless log.file is configured.`,
	Args: cobra.NoArgs,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{fullscreen: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.dash.LoggedIn() {
		if err := login(cmd, a, prompt.New(), ""); err != nil {
			return err
		}
	}

	interval, err := a.cfg.PollInterval()
	if err != nil {
		return err
	}
	return dashtui.Run(cmd.Context(), a.dash, dashtui.Options{PollInterval: interval})
}
