package observability

import (
	"fmt"
	"time"
)

// Metrics holds aggregates derived from the event log over a time window.
type Metrics struct {
	TasksCreated   int `json:"tasks_created"`
	TasksCompleted int `json:"tasks_completed"`
	TasksDeleted   int `json:"tasks_deleted"`

	PomodorosStarted int `json:"pomodoros_started"`
	FocusCompleted   int `json:"focus_completed"`
	BreaksCompleted  int `json:"breaks_completed"`
	FocusMinutes     int `json:"focus_minutes"`

	EventCount  int        `json:"event_count"`
	OldestEvent *time.Time `json:"oldest_event,omitempty"`
	NewestEvent *time.Time `json:"newest_event,omitempty"`
}

// focusSessionMinutes is the nominal length of one completed focus session.
const focusSessionMinutes = 25

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.completed":
			m.TasksCompleted++
		case "task.deleted":
			m.TasksDeleted++
		case "pomodoro.started":
			m.PomodorosStarted++
		case "pomodoro.completed":
			if wasBreak, _ := event.Data["was_break"].(bool); wasBreak {
				m.BreaksCompleted++
			} else {
				m.FocusCompleted++
			}
		}
	}

	m.FocusMinutes = m.FocusCompleted * focusSessionMinutes

	return m, nil
}
