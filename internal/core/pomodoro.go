package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// Session durations. A focus session runs 25 minutes; every fourth
// completed focus session earns the long break.
const (
	FocusDuration      = 25 * time.Minute
	ShortBreakDuration = 5 * time.Minute
	LongBreakDuration  = 15 * time.Minute

	// sessionsPerCycle is how many focus sessions make up one full cycle.
	sessionsPerCycle = 4
)

// PomodoroEvent describes a session that ran to completion during a tick.
type PomodoroEvent struct {
	TaskID    int64
	TaskText  string
	SessionID string
	WasBreak  bool
	// LongBreak is set when a completed focus session qualified for the
	// 15-minute break (the fourth in its cycle). Meaningless when WasBreak.
	LongBreak bool
}

// StartPomodoro begins a fresh 25-minute focus session on the task,
// regardless of any session already in flight. The completed-session
// counter is preserved.
func (s *taskStore) StartPomodoro(id int64) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return false
	}

	now := s.clock.Now()
	task.PomodoroStart = &now
	task.PomodoroDuration = FocusDuration.Milliseconds()
	task.PomodoroPaused = false
	task.PomodoroRemaining = 0
	task.PomodoroIsBreak = false

	session := uuid.NewString()
	s.sessions[id] = session

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("pomodoro.started", map[string]any{"task_id": id, "session_id": session})
	s.publish(snap)
	return true
}

// PausePomodoro freezes a running session, snapshotting the remaining time.
// No-op unless the task has a running, unpaused session.
func (s *taskStore) PausePomodoro(id int64) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil || !task.TimerRunning() {
		s.mu.Unlock()
		return false
	}

	elapsed := s.clock.Now().Sub(*task.PomodoroStart).Milliseconds()
	remaining := task.PomodoroDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	task.PomodoroPaused = true
	task.PomodoroRemaining = remaining

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// ResumePomodoro continues a paused session: the remaining-time snapshot
// becomes the new duration against a fresh start instant.
func (s *taskStore) ResumePomodoro(id int64) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil || !task.TimerPaused() {
		s.mu.Unlock()
		return false
	}

	now := s.clock.Now()
	task.PomodoroStart = &now
	task.PomodoroDuration = task.PomodoroRemaining
	task.PomodoroPaused = false
	task.PomodoroRemaining = 0

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// ResetPomodoro clears all timer state and zeroes the completed-session
// counter.
func (s *taskStore) ResetPomodoro(id int64) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return false
	}

	clearTimer(task)
	task.PomodoroCount = 0
	delete(s.sessions, id)

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

func clearTimer(task *models.Task) {
	task.PomodoroStart = nil
	task.PomodoroDuration = 0
	task.PomodoroPaused = false
	task.PomodoroRemaining = 0
	task.PomodoroIsBreak = false
}

// Tick re-evaluates every running timer against now and transitions those
// that have expired: a finished break returns the task to idle; a finished
// focus session rolls into a short break, or the long break on the fourth
// completion, which also resets the cycle counter. The timer is a pure
// function of (now, start, duration), so missed ticks and clock jumps are
// absorbed on the next evaluation rather than lost.
func (s *taskStore) Tick(now time.Time) []PomodoroEvent {
	s.mu.Lock()
	var events []PomodoroEvent

	for i := range s.tasks {
		task := &s.tasks[i]
		if task.Completed || !task.TimerRunning() {
			continue
		}
		elapsed := now.Sub(*task.PomodoroStart).Milliseconds()
		if elapsed < task.PomodoroDuration {
			continue
		}

		ev := PomodoroEvent{
			TaskID:    task.ID,
			TaskText:  task.Text,
			SessionID: s.sessions[task.ID],
			WasBreak:  task.PomodoroIsBreak,
		}

		if task.PomodoroIsBreak {
			clearTimer(task)
			delete(s.sessions, task.ID)
		} else {
			longBreak := task.PomodoroCount == sessionsPerCycle-1
			ev.LongBreak = longBreak

			start := now
			task.PomodoroStart = &start
			task.PomodoroPaused = false
			task.PomodoroRemaining = 0
			task.PomodoroIsBreak = true
			if longBreak {
				task.PomodoroDuration = LongBreakDuration.Milliseconds()
				task.PomodoroCount = 0
			} else {
				task.PomodoroDuration = ShortBreakDuration.Milliseconds()
				task.PomodoroCount++
			}
		}

		events = append(events, ev)
	}

	var snap []models.Task
	if len(events) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.record("pomodoro.completed", map[string]any{
			"task_id":    ev.TaskID,
			"session_id": ev.SessionID,
			"was_break":  ev.WasBreak,
			"long_break": ev.LongBreak,
		})
	}
	if snap != nil {
		s.publish(snap)
	}
	return events
}

// TimeRemaining reports milliseconds left on the task's session: zero when
// idle, the snapshot when paused, and duration minus elapsed when running,
// clamped non-negative so clock skew never yields a negative countdown.
func (s *taskStore) TimeRemaining(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findLocked(id)
	if task == nil || task.PomodoroStart == nil {
		return 0
	}
	if task.PomodoroPaused {
		return task.PomodoroRemaining
	}
	elapsed := s.clock.Now().Sub(*task.PomodoroStart).Milliseconds()
	remaining := task.PomodoroDuration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatTime renders a millisecond count as M:SS (90000 -> "1:30").
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
