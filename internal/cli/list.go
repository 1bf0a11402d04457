package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// isOverdue reports whether an active task's due date has fully passed:
// a task due today is not overdue until the day is over.
func isOverdue(task models.Task, now time.Time) bool {
	if task.Completed || task.DueDate == "" {
		return false
	}
	due, err := core.ParseDueDate(task.DueDate)
	if err != nil {
		return false
	}
	return due.AddDate(0, 0, 1).Add(-time.Second).Before(now)
}

var (
	listAll       bool
	listCompleted bool
	listCategory  string
	listTag       string
	listPriority  string
)

// List rendering styles.
var (
	idStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	highStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mediumStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	lowStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	tagStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	categoryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	overdueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	timerRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	timerPauseBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List active tasks in manual order.

Use --completed to show completed tasks instead, or --all for both.
Filter by --category, --tag, or --priority; filters combine with AND logic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		tasks := Store.Tasks()
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Order < tasks[j].Order
		})

		now := time.Now()
		shown := 0
		for _, task := range tasks {
			if !matchesListFilters(task) {
				continue
			}
			fmt.Println(renderTaskLine(task, now))
			for _, st := range task.Subtasks {
				fmt.Printf("      %s %s\n", subtaskBox(st.Completed), st.Text)
			}
			shown++
		}

		if shown == 0 {
			fmt.Println("No tasks found.")
		}
		if pending := pendingUndoTask(); pending != nil {
			fmt.Printf("\nDeleted %q. Run 'tempo undo' to restore.\n", pending.Text)
		}
		return nil
	},
}

func matchesListFilters(task models.Task) bool {
	switch {
	case listAll:
	case listCompleted:
		if !task.Completed {
			return false
		}
	default:
		if task.Completed {
			return false
		}
	}

	if listCategory != "" && string(task.Category) != listCategory {
		return false
	}
	if listTag != "" && !task.HasTag(listTag) {
		return false
	}
	if listPriority != "" && string(task.Priority) != listPriority {
		return false
	}
	return true
}

func renderTaskLine(task models.Task, now time.Time) string {
	var parts []string

	parts = append(parts, idStyle.Render(fmt.Sprintf("%4d", task.ID)))
	parts = append(parts, subtaskBox(task.Completed))

	if task.Priority != "" {
		parts = append(parts, priorityBadge(task.Priority))
	}

	text := task.Text
	if task.Completed {
		text = doneStyle.Render(text)
	}
	parts = append(parts, text)

	if task.Category != "" {
		parts = append(parts, categoryStyle.Render("@"+string(task.Category)))
	}
	for _, tag := range task.Tags {
		parts = append(parts, tagStyle.Render("#"+tag))
	}

	if task.DueDate != "" && !task.Completed {
		due := task.DueDate
		if isOverdue(task, now) {
			parts = append(parts, overdueStyle.Render("due "+due+" (overdue)"))
		} else {
			parts = append(parts, idStyle.Render("due "+due))
		}
	}

	if task.Recurring != "" {
		parts = append(parts, idStyle.Render("↻"+string(task.Recurring)))
	}

	if task.TimerRunning() {
		kind := "focus"
		if task.PomodoroIsBreak {
			kind = "break"
		}
		remaining := core.FormatTime(Store.TimeRemaining(task.ID))
		parts = append(parts, timerRunStyle.Render(fmt.Sprintf("[%s %s]", kind, remaining)))
	} else if task.TimerPaused() {
		parts = append(parts, timerPauseBadge.Render(fmt.Sprintf("[paused %s]", core.FormatTime(task.PomodoroRemaining))))
	}

	return strings.Join(parts, " ")
}

func priorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return highStyle.Render("!!!")
	case models.PriorityMedium:
		return mediumStyle.Render("!! ")
	case models.PriorityLow:
		return lowStyle.Render("!  ")
	default:
		return "   "
	}
}

func subtaskBox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// completeTaskIDs offers task identifiers (with text hints) for completion.
func completeTaskIDs(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if Store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, task := range Store.Tasks() {
		out = append(out, fmt.Sprintf("%d\t%s", task.ID, task.Text))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// parseTaskID parses a numeric task ID argument.
func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show active and completed tasks")
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "Show only completed tasks")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().StringVar(&listPriority, "priority", "", "Filter by priority")
	_ = listCmd.RegisterFlagCompletionFunc("category", completeCategories)
	_ = listCmd.RegisterFlagCompletionFunc("priority", completePriorities)

	rootCmd.AddCommand(listCmd)
}
