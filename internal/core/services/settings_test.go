package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stepref/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultResolverSettings(), *settings)
}

func TestSettingsService_Get_NilStore(t *testing.T) {
	service := NewSettingsService(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.MechanismURL, settings.Policy.Mechanism)
	assert.Error(t, service.Set(keyPolicyMechanism, "FTP"))
}

func TestSettingsService_SetAndGet(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.Set("policy.mechanism", "FTP"))
	require.NoError(t, service.Set("policy.extensions", "stp, p21 ,"))
	require.NoError(t, service.Set("policy.exclude", "**/archive/**"))
	require.NoError(t, service.Set("policy.defer_missing", "true"))
	require.NoError(t, service.Set("fetch.rate", "2.5"))
	require.NoError(t, service.Set("fetch.burst", "4"))
	require.NoError(t, service.Set("decoder.schemas", "AP242"))
	require.NoError(t, service.Set("store.dir", "/var/lib/stepref"))
	require.NoError(t, service.Set("watch.enabled", "true"))
	require.NoError(t, service.Set("watch.debounce", "2s"))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "FTP", settings.Policy.Mechanism)
	assert.Equal(t, []string{"stp", "p21"}, settings.Policy.Extensions)
	assert.Equal(t, []string{"**/archive/**"}, settings.Policy.Exclude)
	assert.True(t, settings.Policy.DeferMissing)
	assert.InDelta(t, 2.5, settings.Fetch.RatePerSecond, 1e-9)
	assert.Equal(t, 4, settings.Fetch.Burst)
	assert.Equal(t, []string{"AP242"}, settings.Decoder.Schemas)
	assert.Equal(t, "/var/lib/stepref", settings.Store.Dir)
	assert.True(t, settings.Watch.Enabled)
	assert.Equal(t, 2*time.Second, settings.Watch.Debounce)
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{"policy.defer_missing", "maybe"},
		{"fetch.rate", "-1"},
		{"fetch.rate", "fast"},
		{"fetch.burst", "-2"},
		{"fetch.burst", "1.5"},
		{"watch.debounce", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Get_InvalidStoredValues(t *testing.T) {
	t.Run("negative rate", func(t *testing.T) {
		store := memory.NewConfigStore()
		require.NoError(t, store.Set(keyFetchRate, -3.0))

		_, err := NewSettingsService(store).Get()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("bad debounce", func(t *testing.T) {
		store := memory.NewConfigStore()
		require.NoError(t, store.Set(keyWatchDebounce, "later"))

		_, err := NewSettingsService(store).Get()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_Get_ListFromTOMLArray(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(keyPolicyExtensions, []any{"step", "stpx"}))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, []string{"step", "stpx"}, settings.Policy.Extensions)
}

func TestSettingsService_Get_ExplicitFalseOverridesDefault(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(keyWatchEnabled, false))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.False(t, settings.Watch.Enabled)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(nil).Keys()

	assert.Len(t, keys, 10)
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "policy.exclude")
}

func TestSettingsService_Value(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NoError(t, service.Set(keyFetchRate, "2.5"))
	require.NoError(t, service.Set(keyPolicyExclude, "a/**,b/**"))

	tests := []struct {
		key  string
		want string
	}{
		{keyPolicyMechanism, "URL"},
		{keyPolicyExtensions, "stp,step,p21"},
		{keyPolicyExclude, "a/**,b/**"},
		{keyPolicyDeferMissing, "false"},
		{keyFetchRate, "2.5"},
		{keyFetchBurst, "1"},
		{keyStoreDir, ""},
		{keyWatchEnabled, "false"},
		{keyWatchDebounce, "250ms"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := service.Value(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := service.Value("nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
