package main

import (
	"github.com/spf13/cobra"

	"smd/pkg/ui"
	"smd/pkg/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a := current

	ui.PrintInfo("Checking for updates...")
	checker := update.NewChecker(a.log)
	status, err := checker.Check(cmd.Context())
	if err != nil {
		// Degrade to a message; an unreachable update server should
		// never break the tool.
		a.log.WithError(err).Warn("update check failed")
		ui.PrintWarning("Could not check for updates: %v", err)
		return nil
	}

	ui.PrintInfo("Current version: %s", status.CurrentVersion)
	ui.PrintInfo("Latest version:  %s", status.LatestVersion)

	if status.UpdateAvailable {
		ui.PrintSuccess("New version available: %s", status.LatestVersion)
		ui.PrintInfo("Download: %s", status.ReleaseURL)
		if status.Notes != "" {
			ui.PrintInfo("What's new:\n%s", status.Notes)
		}
	} else {
		ui.PrintSuccess("You're up to date!")
	}
	return nil
}
