package models

import "time"

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recurrence represents how often a completed task respawns with an
// advanced due date.
type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

// Category represents the fixed set of task categories.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryOther    Category = "other"
)

// Subtask is a checklist item owned by exactly one task. Its completion
// flag is independent of the parent's.
type Subtask struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a user-created to-do item, the core entity of the system.
//
// The five Pomodoro* fields plus PomodoroCount form the embedded focus-timer
// state. A task is in exactly one of three timer states: idle
// (PomodoroStart nil), running (PomodoroStart set, PomodoroPaused false), or
// paused (PomodoroStart set, PomodoroPaused true, PomodoroRemaining set).
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// DueDate is a local calendar date in YYYY-MM-DD form, no time component.
	DueDate   string     `json:"dueDate,omitempty"`
	Priority  Priority   `json:"priority,omitempty"`
	Recurring Recurrence `json:"recurring,omitempty"`

	Category     Category  `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Order        int       `json:"order"`
	Notes        string    `json:"notes,omitempty"`
	TimeEstimate int       `json:"timeEstimate,omitempty"` // minutes
	Subtasks     []Subtask `json:"subtasks,omitempty"`

	PomodoroStart     *time.Time `json:"pomodoroStartTime,omitempty"`
	PomodoroDuration  int64      `json:"pomodoroDuration,omitempty"` // milliseconds
	PomodoroPaused    bool       `json:"pomodoroPaused,omitempty"`
	PomodoroRemaining int64      `json:"pomodoroTimeRemaining,omitempty"` // milliseconds, populated only while paused
	PomodoroIsBreak   bool       `json:"pomodoroIsBreak,omitempty"`
	PomodoroCount     int        `json:"pomodoroCount,omitempty"` // completed focus sessions, cycles 0-3
}

// ValidPriorities is the set of allowed Priority values.
var ValidPriorities = map[Priority]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

// ValidRecurrences is the set of allowed Recurrence values.
var ValidRecurrences = map[Recurrence]bool{
	RecurDaily:   true,
	RecurWeekly:  true,
	RecurMonthly: true,
}

// ValidCategories is the set of allowed Category values.
var ValidCategories = map[Category]bool{
	CategoryWork:     true,
	CategoryPersonal: true,
	CategoryShopping: true,
	CategoryHealth:   true,
	CategoryLearning: true,
	CategoryOther:    true,
}

// HasTag reports whether the task carries the given tag. Matching is
// case-sensitive and exact.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// TimerRunning reports whether the task has an active, unpaused focus or
// break session.
func (t *Task) TimerRunning() bool {
	return t.PomodoroStart != nil && !t.PomodoroPaused
}

// TimerPaused reports whether the task has a paused session.
func (t *Task) TimerPaused() bool {
	return t.PomodoroStart != nil && t.PomodoroPaused
}

// Clone returns a deep copy of the task, including subtasks and tags.
// Store queries return clones so callers never alias internal state.
func (t *Task) Clone() Task {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.PomodoroStart != nil {
		at := *t.PomodoroStart
		c.PomodoroStart = &at
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return c
}
