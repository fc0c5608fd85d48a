package driving

import "github.com/custodia-labs/intrafact/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then file, then environment.
	Get() (*domain.AppSettings, error)

	// Set updates one dotted configuration key and persists it.
	Set(key, value string) error

	// Keys returns every supported configuration key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks that the settings can run ingestion and queries.
	Validate() error
}
