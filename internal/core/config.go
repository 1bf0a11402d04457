package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// ConfigurationManager loads and validates settings from the .tempoconfig
// file in the base path.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .tempoconfig relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		StorageFile:      "tasks.md",
		UndoGraceSeconds: int(DefaultUndoGrace.Seconds()),
		DefaultCategory:  "",
	}
}

// LoadGlobalConfig reads the .tempoconfig file from the base path.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".tempoconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("storage.file", cfg.StorageFile)
	v.SetDefault("undo.grace_seconds", cfg.UndoGraceSeconds)
	v.SetDefault("defaults.category", string(cfg.DefaultCategory))
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .tempoconfig: %w", err)
	}

	cfg.StorageFile = v.GetString("storage.file")
	cfg.UndoGraceSeconds = v.GetInt("undo.grace_seconds")
	cfg.DefaultCategory = models.Category(v.GetString("defaults.category"))
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.StorageFile == "" {
		errs = append(errs, "storage.file must not be empty")
	}
	if cfg.UndoGraceSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("undo.grace_seconds must be positive, got %d", cfg.UndoGraceSeconds))
	}
	if cfg.DefaultCategory != "" && !models.ValidCategories[cfg.DefaultCategory] {
		errs = append(errs, fmt.Sprintf(
			"defaults.category %q is invalid, must be one of: work, personal, shopping, health, learning, other",
			cfg.DefaultCategory,
		))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		errs = append(errs, "notifications.webhook_url must be set when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
