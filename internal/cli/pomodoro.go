package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
)

var pomoCmd = &cobra.Command{
	Use:   "pomo",
	Short: "Control pomodoro timers (start, pause, resume, reset, status)",
}

var pomoStartCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start a focus session on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.StartPomodoro(taskID) {
			return fmt.Errorf("task %d not found", taskID)
		}
		fmt.Printf("Focus session started on task %d (%s)\n", taskID, core.FormatTime(Store.TimeRemaining(taskID)))
		return nil
	},
}

var pomoPauseCmd = &cobra.Command{
	Use:   "pause <task-id>",
	Short: "Pause a running timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.PausePomodoro(taskID) {
			return fmt.Errorf("no running timer on task %d", taskID)
		}
		fmt.Printf("Paused task %d at %s\n", taskID, core.FormatTime(Store.TimeRemaining(taskID)))
		return nil
	},
}

var pomoResumeCmd = &cobra.Command{
	Use:   "resume <task-id>",
	Short: "Resume a paused timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.ResumePomodoro(taskID) {
			return fmt.Errorf("no paused timer on task %d", taskID)
		}
		fmt.Printf("Resumed task %d (%s)\n", taskID, core.FormatTime(Store.TimeRemaining(taskID)))
		return nil
	},
}

var pomoResetCmd = &cobra.Command{
	Use:   "reset <task-id>",
	Short: "Stop the timer and reset the session cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.ResetPomodoro(taskID) {
			return fmt.Errorf("task %d not found", taskID)
		}
		fmt.Printf("Reset timer on task %d\n", taskID)
		return nil
	},
}

var pomoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show all tasks with an active or paused timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		Store.Tick(time.Now())

		found := false
		for _, task := range Store.Tasks() {
			if task.PomodoroStart == nil {
				continue
			}
			found = true
			state := "focus"
			if task.PomodoroIsBreak {
				state = "break"
			}
			if task.PomodoroPaused {
				state += " (paused)"
			}
			fmt.Printf("#%d %s  %s  %s  session %d/4\n",
				task.ID, task.Text, state, core.FormatTime(Store.TimeRemaining(task.ID)), task.PomodoroCount+1)
		}
		if !found {
			fmt.Println("No timers running.")
		}
		return nil
	},
}

func init() {
	pomoStartCmd.ValidArgsFunction = completeTaskIDs
	pomoPauseCmd.ValidArgsFunction = completeTaskIDs
	pomoResumeCmd.ValidArgsFunction = completeTaskIDs
	pomoResetCmd.ValidArgsFunction = completeTaskIDs

	pomoCmd.AddCommand(pomoStartCmd)
	pomoCmd.AddCommand(pomoPauseCmd)
	pomoCmd.AddCommand(pomoResumeCmd)
	pomoCmd.AddCommand(pomoResetCmd)
	pomoCmd.AddCommand(pomoStatusCmd)
	rootCmd.AddCommand(pomoCmd)
}
