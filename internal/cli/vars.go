package cli

import (
	"time"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/internal/observability"
	"github.com/valter-silva-au/tempo/internal/storage"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string

	Store core.TaskStore

	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	// DefaultCategory is applied to tasks added without --category.
	DefaultCategory models.Category

	// UndoRepo holds the most recent delete across CLI invocations so
	// 'tempo undo' can restore it from a fresh process within UndoGrace.
	UndoRepo  storage.UndoRepository
	UndoGrace time.Duration
)
