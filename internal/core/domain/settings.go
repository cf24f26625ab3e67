package domain

import "time"

// ResolverSettings holds user-configurable resolution behaviour.
type ResolverSettings struct {
	Policy  PolicySettings
	Fetch   FetchSettings
	Decoder DecoderSettings
	Store   StoreSettings
	Watch   WatchSettings
}

// PolicySettings configures the disposition policy.
type PolicySettings struct {
	// Mechanism is the mechanism tag the policy loads.
	Mechanism string

	// Extensions are recognised exchange-file extensions, without dots.
	Extensions []string

	// Exclude holds glob patterns; matching locations are declined.
	Exclude []string

	// DeferMissing defers locations whose file does not exist yet.
	DeferMissing bool
}

// FetchSettings configures stream opening.
type FetchSettings struct {
	// RatePerSecond limits stream opens per second. Zero disables throttling.
	RatePerSecond float64

	// Burst is the maximum number of opens allowed at once.
	Burst int
}

// DecoderSettings configures the exchange-file decoder.
type DecoderSettings struct {
	// Schemas lists recognised schema names (prefix match, case-insensitive).
	Schemas []string
}

// StoreSettings configures run persistence.
type StoreSettings struct {
	// Dir is the data directory. Empty means ~/.stepref/data.
	Dir string
}

// WatchSettings configures filesystem watching of deferred references.
type WatchSettings struct {
	Enabled bool

	// Debounce coalesces bursts of filesystem events.
	Debounce time.Duration
}

// DefaultExtensions are the exchange-file extensions loaded by default.
var DefaultExtensions = []string{"stp", "step", "p21"}

// DefaultSchemas are the schemas the decoder accepts by default.
var DefaultSchemas = []string{"AP242_MANAGED_MODEL_BASED_3D_ENGINEERING", "AP214", "CONFIG_CONTROL_DESIGN", "PDM_SCHEMA"}

// DefaultResolverSettings returns the built-in defaults.
func DefaultResolverSettings() ResolverSettings {
	return ResolverSettings{
		Policy: PolicySettings{
			Mechanism:  MechanismURL,
			Extensions: append([]string(nil), DefaultExtensions...),
		},
		Fetch: FetchSettings{
			Burst: 1,
		},
		Decoder: DecoderSettings{
			Schemas: append([]string(nil), DefaultSchemas...),
		},
		Watch: WatchSettings{
			Debounce: 250 * time.Millisecond,
		},
	}
}
