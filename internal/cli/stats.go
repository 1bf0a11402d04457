package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
var statsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		stats := Store.Stats()

		if statsJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding stats: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println(statsHeaderStyle.Render("Tasks"))
		statLine("Total", fmt.Sprintf("%d", stats.Total))
		statLine("Active", fmt.Sprintf("%d", stats.Active))
		statLine("Completed", fmt.Sprintf("%d", stats.Completed))
		statLine("Completion rate", fmt.Sprintf("%d%%", stats.CompletionRate))
		statLine("Completed today", fmt.Sprintf("%d", stats.CompletedToday))
		statLine("Completed this week", fmt.Sprintf("%d", stats.CompletedThisWeek))
		statLine("Overdue", fmt.Sprintf("%d", stats.Overdue))

		fmt.Println()
		fmt.Println(statsHeaderStyle.Render("Focus"))
		statLine("Pomodoros", fmt.Sprintf("%d", stats.TotalPomodoros))
		statLine("Focus minutes", fmt.Sprintf("%d", stats.PomodoroMinutes))
		statLine("Estimated minutes", fmt.Sprintf("%d", stats.TotalTimeEstimate))

		printBreakdown("By priority", stringKeyed(stats.ByPriority))
		printBreakdown("By category", stringKeyed(stats.ByCategory))
		printBreakdown("By tag", stats.ByTag)
		return nil
	},
}

func statLine(label, value string) {
	fmt.Printf("  %s %s\n", statsLabelStyle.Render(label), value)
}

func stringKeyed[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println()
	fmt.Println(statsHeaderStyle.Render(title))
	for _, k := range keys {
		statLine(k, fmt.Sprintf("%d", counts[k]))
	}
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
