package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/internal/storage"
)

// setupUndoFixture wires the package vars the delete/undo commands read,
// restoring the previous values when the test ends.
func setupUndoFixture(t *testing.T) {
	t.Helper()

	prevStore, prevRepo, prevGrace := Store, UndoRepo, UndoGrace
	t.Cleanup(func() {
		if Store != nil {
			Store.Close()
		}
		Store, UndoRepo, UndoGrace = prevStore, prevRepo, prevGrace
	})

	Store = core.NewTaskStore(core.NewSystemClock(), nil)
	UndoRepo = storage.NewUndoRepository(t.TempDir())
	UndoGrace = 5 * time.Second
}

func TestUndoRestoresDeleteFromEarlierInvocation(t *testing.T) {
	setupUndoFixture(t)

	task := Store.Add("doomed task", core.AddOptions{})
	if err := rmCmd.RunE(rmCmd, []string{fmt.Sprint(task.ID)}); err != nil {
		t.Fatalf("rm failed: %v", err)
	}

	// A later invocation starts a fresh store from the post-delete state;
	// only the on-disk slot knows about the delete.
	survivors := Store.Tasks()
	Store.Close()
	Store = core.NewTaskStore(core.NewSystemClock(), survivors)

	if err := undoCmd.RunE(undoCmd, nil); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	got, ok := Store.Get(task.ID)
	if !ok {
		t.Fatalf("task %d not restored in the new process", task.ID)
	}
	if got.Text != "doomed task" {
		t.Errorf("restored text = %q, want %q", got.Text, "doomed task")
	}

	pd, err := UndoRepo.Load()
	if err != nil || pd != nil {
		t.Errorf("expected the slot cleared after undo, got %+v, %v", pd, err)
	}
}

func TestUndoIgnoresExpiredSlot(t *testing.T) {
	setupUndoFixture(t)

	task := Store.Add("long gone", core.AddOptions{})
	if !Store.Delete(task.ID) {
		t.Fatal("delete failed")
	}
	Store.DismissUndo()
	if err := UndoRepo.Save(task.Clone(), time.Now().Add(-10*time.Second)); err != nil {
		t.Fatal(err)
	}

	if err := undoCmd.RunE(undoCmd, nil); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if _, ok := Store.Get(task.ID); ok {
		t.Error("expired slot must not be restored")
	}
	pd, err := UndoRepo.Load()
	if err != nil || pd != nil {
		t.Errorf("expected the expired slot cleared, got %+v, %v", pd, err)
	}
}

func TestUndoInSameProcessClearsSlot(t *testing.T) {
	setupUndoFixture(t)

	task := Store.Add("round trip", core.AddOptions{})
	if err := rmCmd.RunE(rmCmd, []string{fmt.Sprint(task.ID)}); err != nil {
		t.Fatalf("rm failed: %v", err)
	}

	if err := undoCmd.RunE(undoCmd, nil); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if _, ok := Store.Get(task.ID); !ok {
		t.Fatal("in-memory undo did not restore the task")
	}
	pd, err := UndoRepo.Load()
	if err != nil || pd != nil {
		t.Errorf("expected the slot cleared after in-memory undo, got %+v, %v", pd, err)
	}
}
