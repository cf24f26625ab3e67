package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".stepref", "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("policy.mechanism", "URL"))
	require.NoError(t, store.Set("fetch.burst", 4))
	require.NoError(t, store.Set("fetch.rate", 2.5))
	require.NoError(t, store.Set("watch.enabled", true))
	require.NoError(t, store.Set("policy.extensions", []string{"stp", "p21"}))

	assert.Equal(t, "URL", store.GetString("policy.mechanism"))
	assert.Equal(t, 4, store.GetInt("fetch.burst"))
	assert.InDelta(t, 2.5, store.GetFloat("fetch.rate"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("fetch.burst"), 1e-9)
	assert.True(t, store.GetBool("watch.enabled"))
	assert.Equal(t, []string{"stp", "p21"}, store.GetStringSlice("policy.extensions"))

	// Wrong type or missing key yields the zero value.
	assert.Empty(t, store.GetString("fetch.burst"))
	assert.Zero(t, store.GetInt("policy.mechanism"))
	assert.Zero(t, store.GetFloat("watch.enabled"))
	assert.False(t, store.GetBool("policy.mechanism"))
	assert.Nil(t, store.GetStringSlice("missing"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Keys(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("watch.enabled", true))
	require.NoError(t, store.Set("decoder.schemas", []string{"AP214"}))

	assert.Equal(t, []string{"decoder.schemas", "watch.enabled"}, store.Keys())
}

func TestConfigStore_Set_InvalidKey(t *testing.T) {
	store := newStore(t)

	for _, key := range []string{"", ".policy", "policy."} {
		assert.Error(t, store.Set(key, "x"), "key %q", key)
	}
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("policy.mechanism", "URL"))
	require.NoError(t, store1.Set("fetch.burst", 42))
	require.NoError(t, store1.Set("fetch.rate", 0.5))
	require.NoError(t, store1.Set("watch.enabled", true))
	require.NoError(t, store1.Set("policy.exclude", []string{"**/*.tmp"}))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "URL", store2.GetString("policy.mechanism"))
	assert.Equal(t, 42, store2.GetInt("fetch.burst"))
	assert.InDelta(t, 0.5, store2.GetFloat("fetch.rate"), 1e-9)
	assert.True(t, store2.GetBool("watch.enabled"))
	assert.Equal(t, []string{"**/*.tmp"}, store2.GetStringSlice("policy.exclude"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("policy.mechanism", "URL"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[policy]")
	assert.Regexp(t, `mechanism = ['"]URL['"]`, string(raw))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[policy]\nextensions = ['stp', 'step']\ndefer_missing = true\n\n[fetch]\nrate = 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"stp", "step"}, store.GetStringSlice("policy.extensions"))
	assert.True(t, store.GetBool("policy.defer_missing"))
	assert.InDelta(t, 10.0, store.GetFloat("fetch.rate"), 1e-9)
	assert.Equal(t, []string{"fetch.rate", "policy.defer_missing", "policy.extensions"}, store.Keys())
}

func TestConfigStore_KeyConflict(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("store", "x"))

	err := store.Set("store.dir", "/data")

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("store.dir", "/data"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("store.dir", "/data"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("watch.enabled", true))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "group.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}
