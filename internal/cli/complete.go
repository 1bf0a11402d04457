package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Toggle a task's completion",
	Long: `Toggle a task's completion flag.

Completing a recurring task that has a due date also spawns its successor,
due one recurrence period later, and strips the rule from the completed
original. Toggling a completed task reopens it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		task := Store.ToggleComplete(id)
		if task == nil {
			return fmt.Errorf("task %d not found", id)
		}

		if task.Completed {
			fmt.Printf("Completed task %d: %s\n", task.ID, task.Text)
		} else {
			fmt.Printf("Reopened task %d: %s\n", task.ID, task.Text)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <task-id>",
	Short: "Reopen a completed task",
	Long: `Reopen a completed task, clearing its completion timestamp.

Recurrence and timer state are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.Restore(id) {
			return fmt.Errorf("task %d not found or not completed", id)
		}
		fmt.Printf("Restored task %d\n", id)
		return nil
	},
}

func init() {
	doneCmd.ValidArgsFunction = completeTaskIDs
	restoreCmd.ValidArgsFunction = completeTaskIDs
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(restoreCmd)
}
