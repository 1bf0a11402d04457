package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <task-id> <new-text>",
	Short: "Replace a task's text",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		newText := strings.Join(args[1:], " ")
		if !Store.Edit(id, newText) {
			return fmt.Errorf("task %d not found or replacement text empty", id)
		}
		fmt.Printf("Updated task %d\n", id)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <before-task-id>",
	Short: "Move a task before another task",
	Long: `Move a task so it sorts immediately before another task.

Every task's manual order index is reassigned to match the new positions.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		draggedID, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		targetID, err := parseTaskID(args[1])
		if err != nil {
			return err
		}

		if !Store.Reorder(draggedID, targetID) {
			return fmt.Errorf("cannot move task %d before %d", draggedID, targetID)
		}
		fmt.Printf("Moved task %d before task %d\n", draggedID, targetID)
		return nil
	},
}

func init() {
	editCmd.ValidArgsFunction = completeTaskIDs
	moveCmd.ValidArgsFunction = completeTaskIDs

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(moveCmd)
}
