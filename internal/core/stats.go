package core

import (
	"math"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// Stats holds derived read-only views over the task collection.
// Breakdown maps cover active tasks only; completed tasks are excluded
// from the by-priority, by-category, and by-tag counts.
type Stats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"` // percent, rounded

	CompletedToday    int `json:"completed_today"`
	CompletedThisWeek int `json:"completed_this_week"`

	TotalPomodoros  int `json:"total_pomodoros"`
	PomodoroMinutes int `json:"pomodoro_minutes"`

	TotalTimeEstimate int `json:"total_time_estimate"` // minutes, active tasks only
	Overdue           int `json:"overdue"`

	ByPriority map[models.Priority]int `json:"by_priority"`
	ByCategory map[models.Category]int `json:"by_category"`
	ByTag      map[string]int          `json:"by_tag"`
}

// CalculateStats computes all derived views as a pure function of the
// collection and the current time.
func CalculateStats(tasks []models.Task, now time.Time) Stats {
	stats := Stats{
		ByPriority: make(map[models.Priority]int),
		ByCategory: make(map[models.Category]int),
		ByTag:      make(map[string]int),
	}

	dayStart := startOfDay(now)
	weekStart := dayStart.AddDate(0, 0, -7)

	for _, task := range tasks {
		stats.Total++

		// Pomodoro counts span active and completed tasks alike.
		stats.TotalPomodoros += task.PomodoroCount

		if task.Completed {
			stats.Completed++
			if task.CompletedAt != nil {
				if !task.CompletedAt.Before(dayStart) {
					stats.CompletedToday++
				}
				if !task.CompletedAt.Before(weekStart) {
					stats.CompletedThisWeek++
				}
			}
			continue
		}

		stats.Active++
		stats.TotalTimeEstimate += task.TimeEstimate

		if task.DueDate != "" {
			if due, err := ParseDueDate(task.DueDate); err == nil && endOfDay(due).Before(now) {
				stats.Overdue++
			}
		}

		if task.Priority != "" {
			stats.ByPriority[task.Priority]++
		}
		if task.Category != "" {
			stats.ByCategory[task.Category]++
		}
		for _, tag := range task.Tags {
			stats.ByTag[tag]++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	stats.PomodoroMinutes = stats.TotalPomodoros * int(FocusDuration.Minutes())

	return stats
}
