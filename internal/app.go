// Package internal provides the App struct that wires all components of the
// tempo task tracker together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/tempo/internal/cli"
	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/internal/observability"
	"github.com/valter-silva-au/tempo/internal/storage"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// App holds all service dependencies for tempo.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Repo storage.TaskRepository

	// Core services
	Store core.TaskStore

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	// saves tracks in-flight persistence goroutines so Close can wait for
	// them; without the wait a one-shot CLI process would exit before its
	// own mutation reached disk.
	saves sync.WaitGroup
}

// NewApp creates and wires all components of tempo. basePath is the directory
// holding the task file and configuration (typically the directory containing
// .tempoconfig, or TEMPO_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, err
	}

	// --- Storage layer ---
	app.Repo = storage.NewTaskRepository(basePath, globalCfg.StorageFile)
	tasks, err := app.Repo.Load()
	if err != nil {
		// Unreadable file: start empty rather than failing the whole CLI.
		tasks = nil
	}
	tasks = storage.DeduplicateByID(tasks)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".tempo_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable the event log if it can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if globalCfg.Notifications.Enabled && globalCfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(globalCfg.Notifications.WebhookURL)
	}

	// --- Core services ---
	opts := []core.StoreOption{
		core.WithUndoGrace(time.Duration(globalCfg.UndoGraceSeconds) * time.Second),
	}
	var journal *eventLogJournal
	if app.EventLog != nil {
		journal = &eventLogJournal{log: app.EventLog}
		opts = append(opts, core.WithJournal(journal))
	}
	app.Store = core.NewTaskStore(core.NewSystemClock(), tasks, opts...)

	// Persist every mutation. Saves run off the calling goroutine so CLI
	// commands stay snappy; a failed save is recorded in the event log.
	// Close waits on the group, so the last write always reaches disk
	// before the process exits.
	app.Store.Subscribe(func(snapshot []models.Task) {
		app.saves.Add(1)
		go func() {
			defer app.saves.Done()
			if saveErr := app.Repo.Save(snapshot); saveErr != nil && journal != nil {
				journal.Record("storage.save_failed", map[string]any{
					"error": saveErr.Error(),
				})
			}
		}()
	})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Store = app.Store
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier
	cli.DefaultCategory = globalCfg.DefaultCategory
	cli.UndoRepo = storage.NewUndoRepository(basePath)
	cli.UndoGrace = time.Duration(globalCfg.UndoGraceSeconds) * time.Second

	return app, nil
}

// Close flushes in-flight saves and releases resources held by the App:
// the undo timer and the event log file handle. Safe to call when EventLog
// is nil.
func (a *App) Close() error {
	a.saves.Wait()
	if a.Store != nil {
		a.Store.Close()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory holding the task file. It checks
// the TEMPO_HOME env var, then walks up from the current directory looking
// for a .tempoconfig file, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TEMPO_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".tempoconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// eventLogJournal adapts observability.EventLog to core.Journal.
type eventLogJournal struct {
	log observability.EventLog
}

func (j *eventLogJournal) Record(eventType string, data map[string]any) {
	_ = j.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
