package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/internal/observability"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelFocus
	panelStats
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data, refreshed on every tick.
	tasks   []models.Task
	stats   core.Stats
	notices []string
}

// tickMsg fires once a second to advance timers and refresh the view.
type tickMsg time.Time

// Style definitions.
var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	panelHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	focusRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	focusBreakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	focusPauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	dashHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	m := dashboardModel{activePanel: panelTasks}
	m.refresh(time.Now())
	return m
}

func dashboardTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashboardModel) Init() tea.Cmd {
	return dashboardTick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.refresh(time.Now())
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh(time.Time(msg))
		return m, dashboardTick()
	}

	return m, nil
}

// refresh advances the pomodoro clock and reloads the panel data. Session
// transitions ring the terminal bell and go out through the notifier.
func (m *dashboardModel) refresh(now time.Time) {
	if Store == nil {
		return
	}

	events := Store.Tick(now)
	if len(events) > 0 {
		fmt.Print("\a")
		notices := make([]observability.SessionNotice, 0, len(events))
		for _, ev := range events {
			notices = append(notices, observability.SessionNotice{
				TaskText:  ev.TaskText,
				SessionID: ev.SessionID,
				WasBreak:  ev.WasBreak,
				LongBreak: ev.LongBreak,
			})
			m.notices = append(m.notices, noticeText(ev))
		}
		if Notifier != nil {
			go func() { _ = Notifier.Notify(notices) }()
		}
		// Keep only the most recent notices.
		if len(m.notices) > 5 {
			m.notices = m.notices[len(m.notices)-5:]
		}
	}

	m.tasks = Store.Tasks()
	m.stats = Store.Stats()
}

func noticeText(ev core.PomodoroEvent) string {
	switch {
	case ev.WasBreak:
		return fmt.Sprintf("Break over, back to %q", ev.TaskText)
	case ev.LongBreak:
		return fmt.Sprintf("Focus done on %q, long break", ev.TaskText)
	default:
		return fmt.Sprintf("Focus done on %q, short break", ev.TaskText)
	}
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := dashTitleStyle.Render(" tempo ")
	help := dashHelpStyle.Render("tab: switch panel | r: refresh | q: quit")

	tasksPanel := m.renderTasksPanel()
	focusPanel := m.renderFocusPanel()
	statsPanel := m.renderStatsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, colWidth-4)
		focusPanel = m.applyPanelStyle(panelFocus, focusPanel, colWidth-4)
		statsPanel = m.applyPanelStyle(panelStats, statsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasksPanel, focusPanel, statsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, panelWidth)
		focusPanel = m.applyPanelStyle(panelFocus, focusPanel, panelWidth)
		statsPanel = m.applyPanelStyle(panelStats, statsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, tasksPanel, focusPanel, statsPanel)
	}

	if len(m.notices) > 0 {
		var b strings.Builder
		for _, n := range m.notices {
			b.WriteString(noticeStyle.Render("  • " + n))
			b.WriteString("\n")
		}
		return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, body, b.String(), help)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(panelHeaderStyle.Render("Tasks"))
	b.WriteString("\n")

	active := 0
	now := time.Now()
	for _, t := range m.tasks {
		if t.Completed {
			continue
		}
		active++
		if active > 10 {
			continue
		}
		b.WriteString("  ")
		b.WriteString(renderTaskLine(t, now))
		b.WriteString("\n")
	}

	if active == 0 {
		b.WriteString("  No active tasks.")
		return b.String()
	}
	if active > 10 {
		b.WriteString(fmt.Sprintf("  ... and %d more\n", active-10))
	}

	return b.String()
}

func (m dashboardModel) renderFocusPanel() string {
	var b strings.Builder
	b.WriteString(panelHeaderStyle.Render("Focus"))
	b.WriteString("\n")

	found := false
	for _, t := range m.tasks {
		if t.PomodoroStart == nil {
			continue
		}
		found = true

		style := focusRunStyle
		state := "focus"
		if t.PomodoroIsBreak {
			style = focusBreakStyle
			state = "break"
		}
		if t.PomodoroPaused {
			style = focusPauseStyle
			state += " paused"
		}

		remaining := core.FormatTime(Store.TimeRemaining(t.ID))
		b.WriteString(style.Render(fmt.Sprintf("  %s  %s  %s", remaining, state, t.Text)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  session %d of 4\n", t.PomodoroCount+1))
	}

	if !found {
		b.WriteString("  No timers running.")
	}

	return b.String()
}

func (m dashboardModel) renderStatsPanel() string {
	var b strings.Builder
	b.WriteString(panelHeaderStyle.Render("Stats"))
	b.WriteString("\n")

	lines := []struct {
		label string
		value int
	}{
		{"Active", m.stats.Active},
		{"Completed", m.stats.Completed},
		{"Rate %", m.stats.CompletionRate},
		{"Today", m.stats.CompletedToday},
		{"This week", m.stats.CompletedThisWeek},
		{"Overdue", m.stats.Overdue},
		{"Pomodoros", m.stats.TotalPomodoros},
		{"Focus min", m.stats.PomodoroMinutes},
	}
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", l.label, l.value))
	}

	return b.String()
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard with live pomodoro timers",
	Long: `Launch an interactive terminal dashboard showing active tasks,
running focus timers, and productivity statistics in a live view.

Timers tick in real time; session transitions ring the terminal
bell and fire the configured webhook notifier.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
