package core

import (
	"testing"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

func TestCalculateStatsEmptyCollection(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	stats := CalculateStats(nil, now)

	if stats.Total != 0 || stats.Active != 0 || stats.Completed != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("empty collection must have 0%% completion rate, got %d", stats.CompletionRate)
	}
}

func TestCalculateStatsCompletionRateRounds(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	done := now.Add(-time.Hour)
	tasks := []models.Task{
		{ID: 1, Text: "a", Completed: true, CompletedAt: &done},
		{ID: 2, Text: "b", Completed: true, CompletedAt: &done},
		{ID: 3, Text: "c"},
	}

	stats := CalculateStats(tasks, now)
	if stats.Total != 3 || stats.Active != 1 || stats.Completed != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	// 2/3 = 66.67 rounds to 67.
	if stats.CompletionRate != 67 {
		t.Errorf("expected rounded rate 67, got %d", stats.CompletionRate)
	}
}

func TestCalculateStatsTimeWindows(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	today := now.Add(-2 * time.Hour)                 // same calendar day
	yesterday := now.AddDate(0, 0, -1)               // within the week
	lastMonth := now.AddDate(0, -1, 0)               // outside the week
	justInsideWeek := now.AddDate(0, 0, -7).Add(time.Hour)

	tasks := []models.Task{
		{ID: 1, Text: "a", Completed: true, CompletedAt: &today},
		{ID: 2, Text: "b", Completed: true, CompletedAt: &yesterday},
		{ID: 3, Text: "c", Completed: true, CompletedAt: &lastMonth},
		{ID: 4, Text: "d", Completed: true, CompletedAt: &justInsideWeek},
	}

	stats := CalculateStats(tasks, now)
	if stats.CompletedToday != 1 {
		t.Errorf("expected 1 completed today, got %d", stats.CompletedToday)
	}
	if stats.CompletedThisWeek != 3 {
		t.Errorf("expected 3 completed this week, got %d", stats.CompletedThisWeek)
	}
}

func TestCalculateStatsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	done := now.Add(-time.Hour)
	tasks := []models.Task{
		{ID: 1, Text: "past", DueDate: "2025-06-10"},
		{ID: 2, Text: "due today", DueDate: "2025-06-15"},
		{ID: 3, Text: "future", DueDate: "2025-06-20"},
		{ID: 4, Text: "no due date"},
		{ID: 5, Text: "past but done", DueDate: "2025-06-10", Completed: true, CompletedAt: &done},
		{ID: 6, Text: "malformed", DueDate: "soon"},
	}

	stats := CalculateStats(tasks, now)
	// Only the active past-due task counts: a task due today is not overdue
	// until its day ends, and completed tasks are never overdue.
	if stats.Overdue != 1 {
		t.Errorf("expected 1 overdue, got %d", stats.Overdue)
	}
}

func TestCalculateStatsBreakdownsCoverActiveOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	done := now.Add(-time.Hour)
	tasks := []models.Task{
		{ID: 1, Text: "a", Priority: models.PriorityHigh, Category: models.CategoryWork, Tags: []string{"x"}},
		{ID: 2, Text: "b", Priority: models.PriorityHigh, Category: models.CategoryPersonal, Tags: []string{"x", "y"}},
		{ID: 3, Text: "c", Priority: models.PriorityLow, Completed: true, CompletedAt: &done,
			Category: models.CategoryWork, Tags: []string{"x"}},
	}

	stats := CalculateStats(tasks, now)
	if stats.ByPriority[models.PriorityHigh] != 2 {
		t.Errorf("expected 2 high-priority active tasks, got %d", stats.ByPriority[models.PriorityHigh])
	}
	if _, present := stats.ByPriority[models.PriorityLow]; present {
		t.Error("completed tasks must not appear in the priority breakdown")
	}
	if stats.ByCategory[models.CategoryWork] != 1 {
		t.Errorf("expected 1 active work task, got %d", stats.ByCategory[models.CategoryWork])
	}
	if stats.ByTag["x"] != 2 || stats.ByTag["y"] != 1 {
		t.Errorf("unexpected tag breakdown: %v", stats.ByTag)
	}
}

func TestCalculateStatsPomodorosSpanAllTasks(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	done := now.Add(-time.Hour)
	tasks := []models.Task{
		{ID: 1, Text: "active", PomodoroCount: 2, TimeEstimate: 30},
		{ID: 2, Text: "done", Completed: true, CompletedAt: &done, PomodoroCount: 3, TimeEstimate: 45},
	}

	stats := CalculateStats(tasks, now)
	if stats.TotalPomodoros != 5 {
		t.Errorf("pomodoro counts must span active and completed tasks, got %d", stats.TotalPomodoros)
	}
	if stats.PomodoroMinutes != 125 {
		t.Errorf("expected 5x25 = 125 focus minutes, got %d", stats.PomodoroMinutes)
	}
	if stats.TotalTimeEstimate != 30 {
		t.Errorf("estimates cover active tasks only, got %d", stats.TotalTimeEstimate)
	}
}
