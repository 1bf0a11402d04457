package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage subtasks (add, done, rm)",
}

var subAddCmd = &cobra.Command{
	Use:   "add <task-id> <text>",
	Short: "Add a subtask to a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		st := Store.AddSubtask(taskID, strings.Join(args[1:], " "))
		if st == nil {
			return fmt.Errorf("task %d not found or subtask text empty", taskID)
		}
		fmt.Printf("Added subtask %d to task %d: %s\n", st.ID, taskID, st.Text)
		return nil
	},
}

var subDoneCmd = &cobra.Command{
	Use:   "done <task-id> <subtask-id>",
	Short: "Toggle a subtask's completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		subtaskID, err := parseTaskID(args[1])
		if err != nil {
			return err
		}

		if !Store.ToggleSubtask(taskID, subtaskID) {
			return fmt.Errorf("subtask %d not found on task %d", subtaskID, taskID)
		}
		fmt.Printf("Toggled subtask %d\n", subtaskID)
		return nil
	},
}

var subRmCmd = &cobra.Command{
	Use:   "rm <task-id> <subtask-id>",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		subtaskID, err := parseTaskID(args[1])
		if err != nil {
			return err
		}

		if !Store.DeleteSubtask(taskID, subtaskID) {
			return fmt.Errorf("subtask %d not found on task %d", subtaskID, taskID)
		}
		fmt.Printf("Deleted subtask %d\n", subtaskID)
		return nil
	},
}

func init() {
	subAddCmd.ValidArgsFunction = completeTaskIDs
	subDoneCmd.ValidArgsFunction = completeTaskIDs
	subRmCmd.ValidArgsFunction = completeTaskIDs

	subCmd.AddCommand(subAddCmd)
	subCmd.AddCommand(subDoneCmd)
	subCmd.AddCommand(subRmCmd)
	rootCmd.AddCommand(subCmd)
}
