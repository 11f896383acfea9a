package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildVersion = "dev"
var buildCommit = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the taskdash version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}

func versionString() string {
	return fmt.Sprintf("taskdash %s (commit %s)", buildVersion, buildCommit)
}
