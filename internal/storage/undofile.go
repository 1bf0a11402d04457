package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// PendingDelete is the single-slot undo buffer as persisted between CLI
// invocations: the deleted task plus the instant it was removed, so a later
// process can tell whether the grace window is still open.
type PendingDelete struct {
	Task      models.Task `json:"task"`
	DeletedAt time.Time   `json:"deleted_at"`
}

// UndoRepository persists the most recent delete across processes. Save
// overwrites any previous slot; Load returns nil with no error when the
// slot is empty or unreadable.
type UndoRepository interface {
	Save(task models.Task, deletedAt time.Time) error
	Load() (*PendingDelete, error)
	Clear() error
}

type fileUndoRepository struct {
	basePath string
}

// NewUndoRepository creates an UndoRepository writing .tempo_undo.json
// inside basePath.
func NewUndoRepository(basePath string) UndoRepository {
	return &fileUndoRepository{basePath: basePath}
}

func (r *fileUndoRepository) filePath() string {
	return filepath.Join(r.basePath, ".tempo_undo.json")
}

func (r *fileUndoRepository) Save(task models.Task, deletedAt time.Time) error {
	data, err := json.Marshal(PendingDelete{Task: task, DeletedAt: deletedAt})
	if err != nil {
		return fmt.Errorf("saving undo slot: %w", err)
	}
	if err := os.WriteFile(r.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving undo slot: writing file: %w", err)
	}
	return nil
}

func (r *fileUndoRepository) Load() (*PendingDelete, error) {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading undo slot: %w", err)
	}

	var pd PendingDelete
	if err := json.Unmarshal(data, &pd); err != nil {
		// A corrupt slot is treated as empty rather than blocking undo.
		return nil, nil
	}
	return &pd, nil
}

func (r *fileUndoRepository) Clear() error {
	if err := os.Remove(r.filePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing undo slot: %w", err)
	}
	return nil
}
