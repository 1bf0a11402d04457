package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "tempo - personal task tracking with focus timers",
	Long: `tempo is a personal task tracker built around a focus-timer workflow.

Create, annotate, and complete tasks with due dates, priorities, recurrence
rules, subtasks, and tags; time focused work sessions against them with a
built-in pomodoro timer; and review your progress with derived statistics.

Tasks persist to a human-readable markdown file so the data stays greppable
and diffable.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tempo %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
