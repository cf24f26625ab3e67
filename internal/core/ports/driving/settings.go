package driving

import "github.com/custodia-labs/stepref/internal/core/domain"

// SettingsService manages resolver settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.ResolverSettings, error)

	// Set stores one setting from its string form.
	Set(key, value string) error

	// Value returns the effective value of one setting in string form.
	Value(key string) (string, error)

	// Keys lists the supported setting keys.
	Keys() []string
}
