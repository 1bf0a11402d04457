package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage task tags (add, rm)",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <task-id> <tag>",
	Short: "Add a tag to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.AddTag(taskID, args[1]) {
			return fmt.Errorf("could not tag task %d (missing task, empty tag, or duplicate)", taskID)
		}
		fmt.Printf("Tagged task %d with #%s\n", taskID, args[1])
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <task-id> <tag>",
	Short: "Remove a tag from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		taskID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.RemoveTag(taskID, args[1]) {
			return fmt.Errorf("tag %q not found on task %d", args[1], taskID)
		}
		fmt.Printf("Removed #%s from task %d\n", args[1], taskID)
		return nil
	},
}

func init() {
	tagAddCmd.ValidArgsFunction = completeTaskIDs
	tagRmCmd.ValidArgsFunction = completeTaskIDs

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	rootCmd.AddCommand(tagCmd)
}
