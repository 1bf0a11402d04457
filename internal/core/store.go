// Package core contains the task state engine for tempo: task CRUD with
// recurrence spawning, the single-slot delete undo buffer, the pomodoro
// timer state machine, derived statistics, and export/import transforms.
package core

import (
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// trimText normalizes user-entered text; the engine rejects anything that
// trims to empty.
func trimText(s string) string { return strings.TrimSpace(s) }

// DefaultUndoGrace is how long a deleted task stays restorable before the
// undo buffer is purged.
const DefaultUndoGrace = 5 * time.Second

// Journal records domain events for observability. Defining it here keeps
// core independent of the observability package.
type Journal interface {
	Record(eventType string, data map[string]any)
}

// ChangeListener receives a snapshot of the full collection after every
// mutation. The app layer uses it to trigger fire-and-forget persistence.
type ChangeListener func(tasks []models.Task)

// AddOptions carries the optional fields for TaskStore.Add.
type AddOptions struct {
	DueDate      string
	Priority     models.Priority
	Category     models.Category
	Recurring    models.Recurrence
	Tags         []string
	TimeEstimate int
	Notes        string
}

// TaskStore owns the ordered task collection and every mutation on it.
// All operations addressing an unknown identifier are no-ops. The store is
// safe for concurrent use; the undo grace timer fires on its own goroutine.
type TaskStore interface {
	// Queries. Returned tasks are deep copies.
	Tasks() []models.Task
	Get(id int64) (models.Task, bool)
	Stats() Stats
	PendingUndo() *models.Task

	// CRUD and organization.
	Add(text string, opts AddOptions) *models.Task
	ToggleComplete(id int64) *models.Task
	Edit(id int64, newText string) bool
	Restore(id int64) bool
	Delete(id int64) bool
	Undo() *models.Task
	Reinstate(task models.Task) *models.Task
	DismissUndo()
	ClearCompleted() int
	Reorder(draggedID, targetID int64) bool
	ReplaceAll(tasks []models.Task)

	AddSubtask(taskID int64, text string) *models.Subtask
	ToggleSubtask(taskID, subtaskID int64) bool
	DeleteSubtask(taskID, subtaskID int64) bool
	AddTag(taskID int64, tag string) bool
	RemoveTag(taskID int64, tag string) bool

	// Pomodoro timer state machine.
	StartPomodoro(id int64) bool
	PausePomodoro(id int64) bool
	ResumePomodoro(id int64) bool
	ResetPomodoro(id int64) bool
	Tick(now time.Time) []PomodoroEvent
	TimeRemaining(id int64) int64

	// Subscribe registers a listener invoked after every mutation.
	Subscribe(fn ChangeListener)

	// Close cancels the pending undo timer, if any.
	Close()
}

// taskStore implements TaskStore.
type taskStore struct {
	mu    sync.Mutex
	tasks []models.Task

	nextID int64

	undoGrace   time.Duration
	lastDeleted *models.Task
	undoTimer   *time.Timer

	clock     Clock
	journal   Journal
	listeners []ChangeListener

	// sessions maps task ID to the uuid of its in-flight pomodoro session.
	sessions map[int64]string
}

// StoreOption customizes a TaskStore.
type StoreOption func(*taskStore)

// WithUndoGrace overrides the undo buffer grace window.
func WithUndoGrace(d time.Duration) StoreOption {
	return func(s *taskStore) {
		if d > 0 {
			s.undoGrace = d
		}
	}
}

// WithJournal attaches a Journal for domain event recording.
func WithJournal(j Journal) StoreOption {
	return func(s *taskStore) { s.journal = j }
}

// NewTaskStore creates a TaskStore seeded with the given tasks (typically
// the persistence collaborator's load result). The ID counter resumes past
// the highest identifier seen, so identifiers are never reused.
func NewTaskStore(clock Clock, seed []models.Task, opts ...StoreOption) TaskStore {
	s := &taskStore{
		clock:     clock,
		undoGrace: DefaultUndoGrace,
		sessions:  make(map[int64]string),
	}
	for _, t := range seed {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.nextID = maxID(s.tasks) + 1
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// maxID returns the highest identifier among tasks and their subtasks.
// Subtask IDs share the task ID space.
func maxID(tasks []models.Task) int64 {
	var max int64
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
		for _, st := range t.Subtasks {
			if st.ID > max {
				max = st.ID
			}
		}
	}
	return max
}

func (s *taskStore) Subscribe(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// snapshotLocked deep-copies the collection. Callers must hold s.mu.
func (s *taskStore) snapshotLocked() []models.Task {
	out := make([]models.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

// publish invokes listeners with a snapshot. Called after s.mu is released
// so listeners may call back into the store.
func (s *taskStore) publish(snapshot []models.Task) {
	for _, fn := range s.listeners {
		fn(snapshot)
	}
}

func (s *taskStore) record(eventType string, data map[string]any) {
	if s.journal != nil {
		s.journal.Record(eventType, data)
	}
}

// allocIDLocked hands out the next identifier. Monotonic and never reused
// within a store lifetime.
func (s *taskStore) allocIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// findLocked returns a pointer into the live collection, or nil.
func (s *taskStore) findLocked(id int64) *models.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *taskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *taskStore) Get(id int64) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findLocked(id); t != nil {
		return t.Clone(), true
	}
	return models.Task{}, false
}

func (s *taskStore) Stats() Stats {
	s.mu.Lock()
	tasks := s.snapshotLocked()
	s.mu.Unlock()
	return CalculateStats(tasks, s.clock.Now())
}

// Add creates a task with a fresh identifier, order one past the current
// maximum, and completed=false. Empty or whitespace-only text is rejected
// with a nil return and no mutation. The due date defaults to today's
// local calendar date when omitted.
func (s *taskStore) Add(text string, opts AddOptions) *models.Task {
	trimmed := trimText(text)
	if trimmed == "" {
		return nil
	}

	now := s.clock.Now()
	due := opts.DueDate
	if due == "" {
		due = now.Format(dueDateLayout)
	}

	s.mu.Lock()
	task := models.Task{
		ID:           s.allocIDLocked(),
		Text:         trimmed,
		Completed:    false,
		CreatedAt:    now,
		DueDate:      due,
		Priority:     opts.Priority,
		Category:     opts.Category,
		Recurring:    opts.Recurring,
		Tags:         uniqueTags(opts.Tags),
		TimeEstimate: opts.TimeEstimate,
		Notes:        opts.Notes,
		Order:        s.maxOrderLocked() + 1,
	}
	s.tasks = append(s.tasks, task)
	clone := task.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("task.created", map[string]any{"id": task.ID, "text": task.Text})
	s.publish(snap)
	return &clone
}

func (s *taskStore) maxOrderLocked() int {
	max := 0
	for _, t := range s.tasks {
		if t.Order > max {
			max = t.Order
		}
	}
	return max
}

// ToggleComplete flips a task's completion flag. Completing an incomplete
// task that has both a recurrence rule and a due date additionally strips
// the rule from the original and spawns one sibling task due one recurrence
// period later, with timer state cleared and subtasks reset. Toggling back
// to incomplete is a plain restore and never re-spawns.
func (s *taskStore) ToggleComplete(id int64) *models.Task {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return nil
	}

	now := s.clock.Now()
	var spawned *models.Task

	switch {
	case !task.Completed && task.Recurring != "" && task.DueDate != "":
		task.Completed = true
		at := now
		task.CompletedAt = &at
		rule := task.Recurring
		task.Recurring = "" // fires once per due-date cycle

		next := s.spawnRecurringLocked(task, rule, now)
		s.tasks = append(s.tasks, next)
		spawned = &next

	case !task.Completed:
		task.Completed = true
		at := now
		task.CompletedAt = &at

	default:
		task.Completed = false
		task.CompletedAt = nil
	}

	clone := task.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if clone.Completed {
		s.record("task.completed", map[string]any{"id": clone.ID})
	} else {
		s.record("task.reopened", map[string]any{"id": clone.ID})
	}
	if spawned != nil {
		s.record("task.created", map[string]any{
			"id": spawned.ID, "text": spawned.Text, "recurred_from": clone.ID,
		})
	}
	s.publish(snap)
	return &clone
}

// spawnRecurringLocked builds the successor of a completed recurring task:
// same text, priority, category, tags, and estimate; fresh identifiers;
// due date advanced one period; timer cleared and subtasks reset.
func (s *taskStore) spawnRecurringLocked(orig *models.Task, rule models.Recurrence, now time.Time) models.Task {
	next := models.Task{
		ID:           s.allocIDLocked(),
		Text:         orig.Text,
		Completed:    false,
		CreatedAt:    now,
		DueDate:      NextDueDate(orig.DueDate, rule),
		Priority:     orig.Priority,
		Category:     orig.Category,
		Recurring:    rule,
		Tags:         append([]string(nil), orig.Tags...),
		TimeEstimate: orig.TimeEstimate,
		Notes:        orig.Notes,
		Order:        s.maxOrderLocked() + 1,
	}
	for _, st := range orig.Subtasks {
		next.Subtasks = append(next.Subtasks, models.Subtask{
			ID:        s.allocIDLocked(),
			Text:      st.Text,
			Completed: false,
		})
	}
	return next
}

// Edit replaces a task's display text. Empty or whitespace-only
// replacements are rejected without mutation.
func (s *taskStore) Edit(id int64, newText string) bool {
	trimmed := trimText(newText)
	if trimmed == "" {
		return false
	}

	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return false
	}
	task.Text = trimmed
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// Restore reopens a completed task, clearing the completion flag and
// timestamp without touching recurrence or timer fields.
func (s *taskStore) Restore(id int64) bool {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil || !task.Completed {
		s.mu.Unlock()
		return false
	}
	task.Completed = false
	task.CompletedAt = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("task.restored", map[string]any{"id": id})
	s.publish(snap)
	return true
}

// Delete removes the task immediately and holds a copy in the single-slot
// undo buffer for the grace window. A second delete before the window
// elapses replaces the buffered task and re-arms the timer.
func (s *taskStore) Delete(id int64) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	held := s.tasks[idx].Clone()
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.lastDeleted = &held
	delete(s.sessions, id)

	if s.undoTimer != nil {
		s.undoTimer.Stop()
	}
	s.undoTimer = time.AfterFunc(s.undoGrace, s.expireUndo)

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("task.deleted", map[string]any{"id": id})
	s.publish(snap)
	return true
}

// expireUndo purges the undo buffer after the grace window.
func (s *taskStore) expireUndo() {
	s.mu.Lock()
	s.lastDeleted = nil
	s.undoTimer = nil
	s.mu.Unlock()
}

// Undo restores the buffered task, appending it at the end of the
// collection rather than its original position. Returns nil if the buffer
// is empty.
func (s *taskStore) Undo() *models.Task {
	s.mu.Lock()
	if s.lastDeleted == nil {
		s.mu.Unlock()
		return nil
	}
	restored := s.lastDeleted.Clone()
	s.tasks = append(s.tasks, restored)
	s.lastDeleted = nil
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	clone := restored.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("task.restored", map[string]any{"id": clone.ID})
	s.publish(snap)
	return &clone
}

// Reinstate appends a previously deleted task back into the collection,
// keeping its identity. Used when an undo arrives in a process whose
// in-memory buffer is empty, restoring a delete held in the on-disk slot.
// The ID counter advances past the reinstated task and its subtasks.
func (s *taskStore) Reinstate(task models.Task) *models.Task {
	s.mu.Lock()
	restored := task.Clone()
	s.tasks = append(s.tasks, restored)
	if next := maxID(s.tasks) + 1; next > s.nextID {
		s.nextID = next
	}
	clone := restored.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("task.restored", map[string]any{"id": clone.ID})
	s.publish(snap)
	return &clone
}

// DismissUndo drops the buffered task without restoring it.
func (s *taskStore) DismissUndo() {
	s.mu.Lock()
	s.lastDeleted = nil
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	s.mu.Unlock()
}

func (s *taskStore) PendingUndo() *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDeleted == nil {
		return nil
	}
	c := s.lastDeleted.Clone()
	return &c
}

// ClearCompleted permanently removes every completed task. This bulk
// delete bypasses the undo buffer; callers gate it behind an explicit
// confirmation. Returns the number of tasks removed.
func (s *taskStore) ClearCompleted() int {
	s.mu.Lock()
	kept := s.tasks[:0]
	removed := 0
	for i := range s.tasks {
		if s.tasks[i].Completed {
			removed++
			delete(s.sessions, s.tasks[i].ID)
			continue
		}
		kept = append(kept, s.tasks[i])
	}
	s.tasks = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if removed > 0 {
		s.record("tasks.cleared", map[string]any{"count": removed})
		s.publish(snap)
	}
	return removed
}

// Reorder moves the dragged task immediately before the target task and
// reassigns every task's order field to its positional index. No-op when
// either identifier is missing or they are equal.
func (s *taskStore) Reorder(draggedID, targetID int64) bool {
	if draggedID == targetID {
		return false
	}

	s.mu.Lock()
	draggedIdx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == draggedID {
			draggedIdx = i
			break
		}
	}
	if draggedIdx < 0 {
		s.mu.Unlock()
		return false
	}

	dragged := s.tasks[draggedIdx]
	rest := append(s.tasks[:draggedIdx:draggedIdx], s.tasks[draggedIdx+1:]...)

	targetIdx := -1
	for i := range rest {
		if rest[i].ID == targetID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		s.mu.Unlock()
		return false
	}

	reordered := make([]models.Task, 0, len(rest)+1)
	reordered = append(reordered, rest[:targetIdx]...)
	reordered = append(reordered, dragged)
	reordered = append(reordered, rest[targetIdx:]...)
	for i := range reordered {
		reordered[i].Order = i
	}
	s.tasks = reordered

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

// ReplaceAll swaps the entire collection for the given tasks, as after a
// successful import. The ID counter advances past the new contents.
func (s *taskStore) ReplaceAll(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = nil
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	if next := maxID(s.tasks) + 1; next > s.nextID {
		s.nextID = next
	}
	s.lastDeleted = nil
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	s.sessions = make(map[int64]string)
	count := len(s.tasks)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.record("tasks.imported", map[string]any{"count": count})
	s.publish(snap)
}

// AddSubtask appends a checklist item to the task. No-op on blank text or
// unknown parent.
func (s *taskStore) AddSubtask(taskID int64, text string) *models.Subtask {
	trimmed := trimText(text)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	task := s.findLocked(taskID)
	if task == nil {
		s.mu.Unlock()
		return nil
	}
	st := models.Subtask{ID: s.allocIDLocked(), Text: trimmed, Completed: false}
	task.Subtasks = append(task.Subtasks, st)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return &st
}

func (s *taskStore) ToggleSubtask(taskID, subtaskID int64) bool {
	s.mu.Lock()
	task := s.findLocked(taskID)
	if task == nil {
		s.mu.Unlock()
		return false
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Completed = !task.Subtasks[i].Completed
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.publish(snap)
			return true
		}
	}
	s.mu.Unlock()
	return false
}

func (s *taskStore) DeleteSubtask(taskID, subtaskID int64) bool {
	s.mu.Lock()
	task := s.findLocked(taskID)
	if task == nil {
		s.mu.Unlock()
		return false
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks = append(task.Subtasks[:i], task.Subtasks[i+1:]...)
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.publish(snap)
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// AddTag appends a tag to the task. No-op if the tag is blank or already
// present (case-sensitive exact match).
func (s *taskStore) AddTag(taskID int64, tag string) bool {
	trimmed := trimText(tag)
	if trimmed == "" {
		return false
	}

	s.mu.Lock()
	task := s.findLocked(taskID)
	if task == nil || task.HasTag(trimmed) {
		s.mu.Unlock()
		return false
	}
	task.Tags = append(task.Tags, trimmed)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return true
}

func (s *taskStore) RemoveTag(taskID int64, tag string) bool {
	s.mu.Lock()
	task := s.findLocked(taskID)
	if task == nil {
		s.mu.Unlock()
		return false
	}
	for i, existing := range task.Tags {
		if existing == tag {
			task.Tags = append(task.Tags[:i], task.Tags[i+1:]...)
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.publish(snap)
			return true
		}
	}
	s.mu.Unlock()
	return false
}

func (s *taskStore) Close() {
	s.mu.Lock()
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	s.mu.Unlock()
}

// uniqueTags drops blank and duplicate entries, preserving first-seen order.
func uniqueTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := trimText(tag)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
