package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/pkg/models"
)

var (
	addDue      string
	addPriority string
	addCategory string
	addRecur    string
	addTags     []string
	addEstimate int
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create a new task",
	Long: `Create a new task with the given text.

The due date defaults to today. Use flags to set a priority, category,
recurrence rule, tags, a time estimate in minutes, or notes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		if addPriority != "" && !models.ValidPriorities[models.Priority(addPriority)] {
			return fmt.Errorf("invalid priority %q: must be high, medium, or low", addPriority)
		}
		if addCategory != "" && !models.ValidCategories[models.Category(addCategory)] {
			return fmt.Errorf("invalid category %q: must be one of work, personal, shopping, health, learning, other", addCategory)
		}
		if addRecur != "" && !models.ValidRecurrences[models.Recurrence(addRecur)] {
			return fmt.Errorf("invalid recurrence %q: must be daily, weekly, or monthly", addRecur)
		}
		if addDue != "" {
			if _, err := core.ParseDueDate(addDue); err != nil {
				return fmt.Errorf("invalid due date %q: use YYYY-MM-DD", addDue)
			}
		}

		category := models.Category(addCategory)
		if category == "" {
			category = DefaultCategory
		}

		task := Store.Add(strings.Join(args, " "), core.AddOptions{
			DueDate:      addDue,
			Priority:     models.Priority(addPriority),
			Category:     category,
			Recurring:    models.Recurrence(addRecur),
			Tags:         addTags,
			TimeEstimate: addEstimate,
			Notes:        addNotes,
		})
		if task == nil {
			return fmt.Errorf("task text must not be empty")
		}

		fmt.Printf("Added task %d: %s\n", task.ID, task.Text)
		if task.DueDate != "" {
			fmt.Printf("  Due: %s\n", task.DueDate)
		}
		if task.Recurring != "" {
			fmt.Printf("  Recurs: %s\n", task.Recurring)
		}
		return nil
	},
}

// completePriorities returns valid priority values for shell completion.
func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"high\tUrgent work",
		"medium\tNormal priority",
		"low\tWhenever",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeCategories returns valid category values for shell completion.
func completeCategories(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"work", "personal", "shopping", "health", "learning", "other"},
		cobra.ShellCompDirectiveNoFileComp
}

func init() {
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD, defaults to today)")
	addCmd.Flags().StringVar(&addPriority, "priority", "", "Priority: high, medium, or low")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category: work, personal, shopping, health, learning, or other")
	addCmd.Flags().StringVar(&addRecur, "recur", "", "Recurrence: daily, weekly, or monthly")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "Comma-separated tags")
	addCmd.Flags().IntVar(&addEstimate, "estimate", 0, "Time estimate in minutes")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-text notes")
	_ = addCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	_ = addCmd.RegisterFlagCompletionFunc("category", completeCategories)

	rootCmd.AddCommand(addCmd)
}
