package core

import (
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// fakeClock implements Clock with a settable instant.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingJournal captures domain events for assertions.
type recordingJournal struct {
	mu     sync.Mutex
	events []string
}

func (j *recordingJournal) Record(eventType string, data map[string]any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, eventType)
}

func (j *recordingJournal) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

func newTestStore(t *testing.T, opts ...StoreOption) (TaskStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))
	store := NewTaskStore(clock, nil, opts...)
	t.Cleanup(store.Close)
	return store, clock
}

func TestAddAssignsSequentialIDsAndOrder(t *testing.T) {
	store, clock := newTestStore(t)

	first := store.Add("write report", AddOptions{})
	second := store.Add("review PR", AddOptions{})

	if first == nil || second == nil {
		t.Fatal("Add returned nil for valid text")
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if second.Order <= first.Order {
		t.Errorf("expected increasing order, got %d then %d", first.Order, second.Order)
	}
	if first.Completed {
		t.Error("new task should not be completed")
	}
	wantDue := clock.Now().Format("2006-01-02")
	if first.DueDate != wantDue {
		t.Errorf("expected default due date %s, got %s", wantDue, first.DueDate)
	}
}

func TestAddRejectsBlankText(t *testing.T) {
	store, _ := newTestStore(t)

	if got := store.Add("", AddOptions{}); got != nil {
		t.Errorf("expected nil for empty text, got %+v", got)
	}
	if got := store.Add("   \t ", AddOptions{}); got != nil {
		t.Errorf("expected nil for whitespace text, got %+v", got)
	}
	if len(store.Tasks()) != 0 {
		t.Error("rejected adds must not mutate the collection")
	}
}

func TestAddTrimsTextAndDeduplicatesTags(t *testing.T) {
	store, _ := newTestStore(t)

	task := store.Add("  buy milk  ", AddOptions{Tags: []string{"errand", "errand", " ", "home"}})
	if task == nil {
		t.Fatal("Add returned nil")
	}
	if task.Text != "buy milk" {
		t.Errorf("expected trimmed text, got %q", task.Text)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "errand" || task.Tags[1] != "home" {
		t.Errorf("expected deduplicated tags [errand home], got %v", task.Tags)
	}
}

func TestToggleCompleteSetsAndClearsTimestamp(t *testing.T) {
	store, clock := newTestStore(t)
	task := store.Add("write report", AddOptions{})

	done := store.ToggleComplete(task.ID)
	if done == nil || !done.Completed {
		t.Fatal("expected task to be completed")
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(clock.Now()) {
		t.Errorf("expected completedAt %v, got %v", clock.Now(), done.CompletedAt)
	}

	reopened := store.ToggleComplete(task.ID)
	if reopened == nil || reopened.Completed {
		t.Fatal("expected task to be reopened")
	}
	if reopened.CompletedAt != nil {
		t.Error("reopening must clear completedAt")
	}
}

func TestToggleCompleteRecurringSpawnsSuccessor(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("water plants", AddOptions{
		DueDate:   "2025-06-15",
		Recurring: models.RecurDaily,
		Priority:  models.PriorityHigh,
		Tags:      []string{"home"},
	})
	st := store.AddSubtask(task.ID, "front room")
	store.ToggleSubtask(task.ID, st.ID)

	store.ToggleComplete(task.ID)

	tasks := store.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected original plus spawned task, got %d tasks", len(tasks))
	}

	var orig, next models.Task
	for _, tk := range tasks {
		if tk.ID == task.ID {
			orig = tk
		} else {
			next = tk
		}
	}

	if !orig.Completed {
		t.Error("original must be completed")
	}
	if orig.Recurring != "" {
		t.Error("recurrence rule must be stripped from the completed original")
	}
	if next.Completed {
		t.Error("spawned task must start incomplete")
	}
	if next.Recurring != models.RecurDaily {
		t.Error("spawned task must carry the recurrence rule")
	}
	if next.DueDate != "2025-06-16" {
		t.Errorf("expected due date advanced to 2025-06-16, got %s", next.DueDate)
	}
	if next.Priority != models.PriorityHigh || len(next.Tags) != 1 {
		t.Error("spawned task must inherit priority and tags")
	}
	if len(next.Subtasks) != 1 {
		t.Fatalf("expected 1 inherited subtask, got %d", len(next.Subtasks))
	}
	if next.Subtasks[0].Completed {
		t.Error("inherited subtasks must be reset to incomplete")
	}
	if next.Subtasks[0].ID == st.ID {
		t.Error("inherited subtasks must get fresh identifiers")
	}
	if next.PomodoroStart != nil || next.PomodoroCount != 0 {
		t.Error("spawned task must start with no timer state")
	}
}

func TestToggleCompleteRecurringWithoutDueDateDoesNotSpawn(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("stretch", AddOptions{Recurring: models.RecurDaily})
	// Force the due date empty; Add defaults it to today.
	task2 := store.Tasks()[0]
	task2.DueDate = ""
	store.ReplaceAll([]models.Task{task2})

	store.ToggleComplete(task.ID)
	if got := len(store.Tasks()); got != 1 {
		t.Errorf("expected no spawn without a due date, got %d tasks", got)
	}
}

func TestReopeningRecurringOriginalDoesNotRespawn(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("water plants", AddOptions{DueDate: "2025-06-15", Recurring: models.RecurDaily})

	store.ToggleComplete(task.ID)
	store.ToggleComplete(task.ID) // reopen
	store.ToggleComplete(task.ID) // complete again

	// Rule was stripped on the first completion, so only one spawn ever.
	if got := len(store.Tasks()); got != 2 {
		t.Errorf("expected 2 tasks after reopen/re-complete, got %d", got)
	}
}

func TestEditReplacesTextAndRejectsBlank(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("write report", AddOptions{})

	if !store.Edit(task.ID, "  write final report  ") {
		t.Fatal("expected edit to succeed")
	}
	got, _ := store.Get(task.ID)
	if got.Text != "write final report" {
		t.Errorf("expected trimmed replacement, got %q", got.Text)
	}

	if store.Edit(task.ID, "   ") {
		t.Error("blank replacement must be rejected")
	}
	got, _ = store.Get(task.ID)
	if got.Text != "write final report" {
		t.Error("rejected edit must not mutate")
	}
}

func TestDeleteHoldsTaskInUndoBuffer(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("write report", AddOptions{})

	if !store.Delete(task.ID) {
		t.Fatal("expected delete to succeed")
	}
	if len(store.Tasks()) != 0 {
		t.Error("delete must remove the task immediately")
	}
	held := store.PendingUndo()
	if held == nil || held.ID != task.ID {
		t.Fatal("deleted task must be held in the undo buffer")
	}
}

func TestUndoRestoresAtEndOfCollection(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Add("first", AddOptions{})
	store.Add("second", AddOptions{})
	store.Add("third", AddOptions{})

	store.Delete(a.ID)
	restored := store.Undo()
	if restored == nil || restored.ID != a.ID {
		t.Fatal("expected undo to restore the deleted task")
	}

	tasks := store.Tasks()
	if tasks[len(tasks)-1].ID != a.ID {
		t.Error("restored task must append at the end, not its original position")
	}
	if store.PendingUndo() != nil {
		t.Error("undo must clear the buffer")
	}
	if store.Undo() != nil {
		t.Error("second undo must return nil")
	}
}

func TestSecondDeleteReplacesUndoBuffer(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Add("first", AddOptions{})
	b := store.Add("second", AddOptions{})

	store.Delete(a.ID)
	store.Delete(b.ID)

	held := store.PendingUndo()
	if held == nil || held.ID != b.ID {
		t.Fatal("second delete must replace the buffered task")
	}
	restored := store.Undo()
	if restored.ID != b.ID {
		t.Error("undo must restore only the most recent deletion")
	}
	if len(store.Tasks()) != 1 {
		t.Errorf("first deletion is unrecoverable, expected 1 task, got %d", len(store.Tasks()))
	}
}

func TestUndoBufferExpiresAfterGrace(t *testing.T) {
	store, _ := newTestStore(t, WithUndoGrace(20*time.Millisecond))
	task := store.Add("write report", AddOptions{})

	store.Delete(task.ID)
	time.Sleep(80 * time.Millisecond)

	if store.PendingUndo() != nil {
		t.Error("undo buffer must be purged after the grace window")
	}
	if store.Undo() != nil {
		t.Error("undo after expiry must return nil")
	}
}

func TestReinstatePreservesIdentityAndAdvancesIDs(t *testing.T) {
	journal := &recordingJournal{}
	store, _ := newTestStore(t, WithJournal(journal))
	task := store.Add("lost and found", AddOptions{})
	store.AddSubtask(task.ID, "step one")

	deleted, _ := store.Get(task.ID)
	store.Delete(task.ID)
	store.DismissUndo()

	restored := store.Reinstate(deleted)
	if restored.ID != task.ID {
		t.Fatalf("reinstate must keep the original ID, got %d want %d", restored.ID, task.ID)
	}
	got, ok := store.Get(task.ID)
	if !ok || got.Text != "lost and found" || len(got.Subtasks) != 1 {
		t.Fatalf("reinstated task incomplete: %+v", got)
	}

	// Fresh IDs never collide with the reinstated task or its subtasks.
	next := store.Add("later", AddOptions{})
	if next.ID <= got.Subtasks[0].ID {
		t.Errorf("ID counter did not advance past reinstated IDs: got %d", next.ID)
	}

	types := journal.types()
	if types[len(types)-2] != "task.restored" {
		t.Errorf("expected task.restored before the final add, got %v", types)
	}
}

func TestDismissUndoDropsBufferedTask(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("write report", AddOptions{})

	store.Delete(task.ID)
	store.DismissUndo()

	if store.PendingUndo() != nil {
		t.Error("dismiss must drop the buffered task")
	}
	if store.Undo() != nil {
		t.Error("undo after dismiss must return nil")
	}
}

func TestClearCompletedBypassesUndo(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Add("done one", AddOptions{})
	store.Add("still open", AddOptions{})
	c := store.Add("done two", AddOptions{})
	store.ToggleComplete(a.ID)
	store.ToggleComplete(c.ID)

	removed := store.ClearCompleted()
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if len(store.Tasks()) != 1 {
		t.Errorf("expected 1 remaining task, got %d", len(store.Tasks()))
	}
	if store.PendingUndo() != nil {
		t.Error("bulk clear must not populate the undo buffer")
	}
}

func TestReorderMovesBeforeTargetAndReindexes(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Add("a", AddOptions{})
	b := store.Add("b", AddOptions{})
	c := store.Add("c", AddOptions{})

	if !store.Reorder(c.ID, a.ID) {
		t.Fatal("expected reorder to succeed")
	}

	tasks := store.Tasks()
	wantIDs := []int64{c.ID, a.ID, b.ID}
	for i, want := range wantIDs {
		if tasks[i].ID != want {
			t.Fatalf("position %d: expected task %d, got %d", i, want, tasks[i].ID)
		}
		if tasks[i].Order != i {
			t.Errorf("position %d: expected order %d, got %d", i, i, tasks[i].Order)
		}
	}
}

func TestReorderNoOps(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Add("a", AddOptions{})
	store.Add("b", AddOptions{})

	if store.Reorder(a.ID, a.ID) {
		t.Error("reorder onto itself must be a no-op")
	}
	if store.Reorder(999, a.ID) {
		t.Error("unknown dragged ID must be a no-op")
	}
	if store.Reorder(a.ID, 999) {
		t.Error("unknown target ID must be a no-op")
	}
	if len(store.Tasks()) != 2 {
		t.Error("failed reorders must not drop tasks")
	}
}

func TestReplaceAllResetsUndoAndAdvancesIDs(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("old", AddOptions{})
	store.Delete(task.ID)

	store.ReplaceAll([]models.Task{
		{ID: 40, Text: "imported a"},
		{ID: 41, Text: "imported b"},
	})

	if store.PendingUndo() != nil {
		t.Error("import must reset the undo buffer")
	}
	fresh := store.Add("after import", AddOptions{})
	if fresh.ID != 42 {
		t.Errorf("expected ID counter to resume at 42, got %d", fresh.ID)
	}
}

func TestSubtaskLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("pack bags", AddOptions{})

	st := store.AddSubtask(task.ID, "  passport  ")
	if st == nil || st.Text != "passport" {
		t.Fatalf("expected trimmed subtask, got %+v", st)
	}
	if st.ID <= task.ID {
		t.Error("subtask IDs share the task counter and must be fresh")
	}
	if store.AddSubtask(task.ID, "  ") != nil {
		t.Error("blank subtask text must be rejected")
	}

	if !store.ToggleSubtask(task.ID, st.ID) {
		t.Fatal("expected toggle to succeed")
	}
	got, _ := store.Get(task.ID)
	if !got.Subtasks[0].Completed {
		t.Error("subtask must be completed after toggle")
	}

	if !store.DeleteSubtask(task.ID, st.ID) {
		t.Fatal("expected delete to succeed")
	}
	got, _ = store.Get(task.ID)
	if len(got.Subtasks) != 0 {
		t.Error("subtask must be removed")
	}
}

func TestTagLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("read paper", AddOptions{})

	if !store.AddTag(task.ID, "research") {
		t.Fatal("expected tag add to succeed")
	}
	if store.AddTag(task.ID, "research") {
		t.Error("duplicate tag must be rejected")
	}
	if store.AddTag(task.ID, "  ") {
		t.Error("blank tag must be rejected")
	}

	if store.RemoveTag(task.ID, "missing") {
		t.Error("removing an absent tag must fail")
	}
	if !store.RemoveTag(task.ID, "research") {
		t.Fatal("expected tag removal to succeed")
	}
	got, _ := store.Get(task.ID)
	if len(got.Tags) != 0 {
		t.Error("tag must be removed")
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	store, _ := newTestStore(t)
	store.Add("only task", AddOptions{})

	if store.ToggleComplete(999) != nil {
		t.Error("toggle on unknown ID must return nil")
	}
	if store.Edit(999, "text") {
		t.Error("edit on unknown ID must fail")
	}
	if store.Delete(999) {
		t.Error("delete on unknown ID must fail")
	}
	if store.Restore(999) {
		t.Error("restore on unknown ID must fail")
	}
	if store.AddSubtask(999, "x") != nil {
		t.Error("subtask add on unknown ID must return nil")
	}
	if store.AddTag(999, "x") {
		t.Error("tag add on unknown ID must fail")
	}
	if store.StartPomodoro(999) {
		t.Error("pomodoro start on unknown ID must fail")
	}
	if len(store.Tasks()) != 1 {
		t.Error("no-ops must not mutate the collection")
	}
}

func TestRestoreReopensCompletedTask(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("write report", AddOptions{})

	if store.Restore(task.ID) {
		t.Error("restore on an active task must fail")
	}
	store.ToggleComplete(task.ID)
	if !store.Restore(task.ID) {
		t.Fatal("expected restore to succeed")
	}
	got, _ := store.Get(task.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Error("restore must clear completion state")
	}
}

func TestSubscribeReceivesSnapshotAfterMutation(t *testing.T) {
	store, _ := newTestStore(t)

	var (
		mu        sync.Mutex
		snapshots [][]models.Task
	)
	store.Subscribe(func(tasks []models.Task) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, tasks)
	})

	task := store.Add("notify me", AddOptions{})
	store.ToggleComplete(task.ID)

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(snapshots))
	}
	if len(snapshots[1]) != 1 || !snapshots[1][0].Completed {
		t.Error("listener must receive the post-mutation snapshot")
	}
}

func TestJournalRecordsDomainEvents(t *testing.T) {
	journal := &recordingJournal{}
	store, _ := newTestStore(t, WithJournal(journal))

	task := store.Add("log me", AddOptions{})
	store.ToggleComplete(task.ID)
	store.Delete(task.ID)

	got := journal.types()
	want := []string{"task.created", "task.completed", "task.deleted"}
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNewTaskStoreResumesIDCounterPastSeed(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))
	seed := []models.Task{
		{ID: 7, Text: "a", Subtasks: []models.Subtask{{ID: 12, Text: "s"}}},
		{ID: 3, Text: "b"},
	}
	store := NewTaskStore(clock, seed)
	t.Cleanup(store.Close)

	fresh := store.Add("new", AddOptions{})
	if fresh.ID != 13 {
		t.Errorf("expected ID past highest seed identifier (13), got %d", fresh.ID)
	}
}

func TestTasksReturnsDeepCopies(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.Add("immutable", AddOptions{Tags: []string{"a"}})
	store.AddSubtask(task.ID, "sub")

	out := store.Tasks()
	out[0].Text = "mutated"
	out[0].Tags[0] = "mutated"
	out[0].Subtasks[0].Text = "mutated"

	fresh, _ := store.Get(task.ID)
	if fresh.Text != "immutable" || fresh.Tags[0] != "a" || fresh.Subtasks[0].Text != "sub" {
		t.Error("callers must not be able to mutate store state through returned tasks")
	}
}
