package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// pendingUndoTask reports the restorable delete, checking the in-memory
// buffer first and then the on-disk slot left by an earlier invocation.
func pendingUndoTask() *models.Task {
	if Store == nil {
		return nil
	}
	if pending := Store.PendingUndo(); pending != nil {
		return pending
	}
	if UndoRepo != nil {
		if pd, err := UndoRepo.Load(); err == nil && pd != nil && time.Since(pd.DeletedAt) <= UndoGrace {
			task := pd.Task.Clone()
			return &task
		}
	}
	return nil
}

var rmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task (undoable for a few seconds)",
	Long: `Delete a task immediately.

The deleted task is held in a single-slot undo buffer for a short grace
window; 'tempo undo' within that window restores it. Deleting another task
replaces the buffer, so only the most recent delete is restorable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !Store.Delete(id) {
			return fmt.Errorf("task %d not found", id)
		}
		// The in-memory buffer dies with this process, so the slot is
		// also written to disk for a later 'tempo undo' invocation.
		if UndoRepo != nil {
			if pending := Store.PendingUndo(); pending != nil {
				_ = UndoRepo.Save(*pending, time.Now())
			}
		}
		fmt.Printf("Deleted task %d. Run 'tempo undo' to restore.\n", id)
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the most recently deleted task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		if task := Store.Undo(); task != nil {
			if UndoRepo != nil {
				_ = UndoRepo.Clear()
			}
			fmt.Printf("Restored task %d: %s\n", task.ID, task.Text)
			return nil
		}

		// Empty in-memory buffer: the delete may have happened in an
		// earlier invocation, so consult the on-disk slot.
		if UndoRepo != nil {
			pd, err := UndoRepo.Load()
			if err != nil {
				return fmt.Errorf("reading undo slot: %w", err)
			}
			if pd != nil {
				_ = UndoRepo.Clear()
				if time.Since(pd.DeletedAt) <= UndoGrace {
					task := Store.Reinstate(pd.Task)
					fmt.Printf("Restored task %d: %s\n", task.ID, task.Text)
					return nil
				}
			}
		}

		fmt.Println("Nothing to undo.")
		return nil
	},
}

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Permanently remove all completed tasks",
	Long: `Permanently remove every completed task.

This bulk delete is irreversible and bypasses the undo buffer, so it
requires explicit confirmation with --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		if !clearYes {
			return fmt.Errorf("clearing completed tasks is irreversible; re-run with --yes to confirm")
		}

		removed := Store.ClearCompleted()
		fmt.Printf("Removed %d completed task(s)\n", removed)
		return nil
	},
}

func init() {
	rmCmd.ValidArgsFunction = completeTaskIDs
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm the irreversible bulk delete")

	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(clearCmd)
}
