package driven

// ConfigStore provides access to resolver configuration.
// Keys use dot notation ("policy.extensions"); implementations handle
// persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString returns "" when the key is missing or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is missing or not an integer.
	GetInt(key string) int

	// GetFloat returns 0 when the key is missing or not numeric.
	GetFloat(key string) float64

	// GetBool returns false when the key is missing or not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns nil when the key is missing or not a list.
	GetStringSlice(key string) []string

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Keys lists every stored key, sorted.
	Keys() []string

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
