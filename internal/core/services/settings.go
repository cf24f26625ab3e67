package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPolicyMechanism    = "policy.mechanism"
	keyPolicyExtensions   = "policy.extensions"
	keyPolicyExclude      = "policy.exclude"
	keyPolicyDeferMissing = "policy.defer_missing"
	keyFetchRate          = "fetch.rate"
	keyFetchBurst         = "fetch.burst"
	keyDecoderSchemas     = "decoder.schemas"
	keyStoreDir           = "store.dir"
	keyWatchEnabled       = "watch.enabled"
	keyWatchDebounce      = "watch.debounce"
)

// settingKind tells Set how to parse a value.
type settingKind int

const (
	kindString settingKind = iota
	kindList
	kindBool
	kindFloat
	kindInt
	kindDuration
)

var settingKinds = map[string]settingKind{
	keyPolicyMechanism:    kindString,
	keyPolicyExtensions:   kindList,
	keyPolicyExclude:      kindList,
	keyPolicyDeferMissing: kindBool,
	keyFetchRate:          kindFloat,
	keyFetchBurst:         kindInt,
	keyDecoderSchemas:     kindList,
	keyStoreDir:           kindString,
	keyWatchEnabled:       kindBool,
	keyWatchDebounce:      kindDuration,
}

// SettingsService manages resolver settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings, applying defaults for missing keys.
func (s *SettingsService) Get() (*domain.ResolverSettings, error) {
	settings := domain.DefaultResolverSettings()
	if s.configStore == nil {
		return &settings, nil
	}

	settings.Policy.Mechanism = s.getString(keyPolicyMechanism, settings.Policy.Mechanism)
	settings.Policy.Extensions = s.getList(keyPolicyExtensions, settings.Policy.Extensions)
	settings.Policy.Exclude = s.getList(keyPolicyExclude, settings.Policy.Exclude)
	settings.Policy.DeferMissing = s.getBool(keyPolicyDeferMissing, settings.Policy.DeferMissing)
	settings.Fetch.RatePerSecond = s.configStore.GetFloat(keyFetchRate)
	if burst := s.configStore.GetInt(keyFetchBurst); burst > 0 {
		settings.Fetch.Burst = burst
	}
	settings.Decoder.Schemas = s.getList(keyDecoderSchemas, settings.Decoder.Schemas)
	settings.Store.Dir = s.configStore.GetString(keyStoreDir)
	settings.Watch.Enabled = s.getBool(keyWatchEnabled, settings.Watch.Enabled)
	if raw := s.configStore.GetString(keyWatchDebounce); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, keyWatchDebounce, err)
		}
		settings.Watch.Debounce = d
	}

	if settings.Fetch.RatePerSecond < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyFetchRate)
	}
	return &settings, nil
}

// Set parses value according to key and stores it.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindList:
		parsed = splitList(value)
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		parsed = b
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s needs a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 {
			return fmt.Errorf("%w: %s needs a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = int64(i)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		parsed = value
	}
	return s.configStore.Set(key, parsed)
}

// Value returns the effective value of key, defaults applied, in the form Set accepts.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKinds[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyPolicyMechanism:
		return settings.Policy.Mechanism, nil
	case keyPolicyExtensions:
		return strings.Join(settings.Policy.Extensions, ","), nil
	case keyPolicyExclude:
		return strings.Join(settings.Policy.Exclude, ","), nil
	case keyPolicyDeferMissing:
		return strconv.FormatBool(settings.Policy.DeferMissing), nil
	case keyFetchRate:
		return strconv.FormatFloat(settings.Fetch.RatePerSecond, 'g', -1, 64), nil
	case keyFetchBurst:
		return strconv.Itoa(settings.Fetch.Burst), nil
	case keyDecoderSchemas:
		return strings.Join(settings.Decoder.Schemas, ","), nil
	case keyStoreDir:
		return settings.Store.Dir, nil
	case keyWatchEnabled:
		return strconv.FormatBool(settings.Watch.Enabled), nil
	default:
		return settings.Watch.Debounce.String(), nil
	}
}

// Keys lists the supported setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	if val := s.configStore.GetString(key); val != "" {
		return splitList(val)
	}
	return defaultVal
}

// splitList parses a comma separated list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
