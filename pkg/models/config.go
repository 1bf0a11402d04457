package models

// GlobalConfig holds settings loaded from the .tempoconfig file.
type GlobalConfig struct {
	// StorageFile is the tasks file name, relative to the base path.
	StorageFile string `yaml:"storage_file"`

	// UndoGraceSeconds is how long a deleted task is held in the undo
	// buffer before being purged.
	UndoGraceSeconds int `yaml:"undo_grace_seconds"`

	// DefaultCategory is applied to new tasks created without an explicit
	// category. Empty means no category.
	DefaultCategory Category `yaml:"default_category"`

	Notifications NotificationConfig `yaml:"notifications"`
}

// NotificationConfig controls pomodoro completion notifications.
type NotificationConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}
