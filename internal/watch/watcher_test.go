package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// fakeTarget defers a location until its file exists.
type fakeTarget struct {
	mu      sync.Mutex
	pending []domain.DocumentSourceLocation
	retries int
}

func (f *fakeTarget) Deferred() []domain.DocumentSourceLocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.DocumentSourceLocation(nil), f.pending...)
}

func (f *fakeTarget) Retry(context.Context, ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	var still []domain.DocumentSourceLocation
	for _, loc := range f.pending {
		if _, err := os.Stat(loc.FullPath()); err != nil {
			still = append(still, loc)
		}
	}
	f.pending = still
	return nil
}

func (f *fakeTarget) retryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.retries
}

func TestWatcher_RetriesWhenFileAppears(t *testing.T) {
	dir := t.TempDir()
	target := &fakeTarget{pending: []domain.DocumentSourceLocation{
		domain.NewLocation("part1.stp", dir, domain.MechanismURL),
	}}

	w, err := New(target, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, 1, w.Watching())

	var triggered []string
	w.OnRetry = func(paths []string, err error) {
		assert.NoError(t, err)
		triggered = append(triggered, paths...)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	// Unrelated files do not trigger a retry.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.stp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part1.stp"), []byte("x"), 0o600))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not finish")
	}
	assert.Equal(t, 1, target.retryCount())
	assert.Equal(t, []string{filepath.Join(dir, "part1.stp")}, triggered)
	assert.Zero(t, w.Watching())
}

func TestWatcher_NothingDeferred(t *testing.T) {
	w, err := New(&fakeTarget{}, 0)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.NoError(t, w.Run(context.Background()))
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	target := &fakeTarget{pending: []domain.DocumentSourceLocation{
		domain.NewLocation("part1.stp", dir, domain.MechanismURL),
	}}
	w, err := New(target, time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, target.retryCount())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	target := &fakeTarget{pending: []domain.DocumentSourceLocation{
		domain.NewLocation("part1.stp", filepath.Join(t.TempDir(), "absent"), domain.MechanismURL),
	}}

	w, err := New(target, 0)
	require.NoError(t, err)
	defer w.Close()

	// The path is still awaited; only the directory watch failed.
	assert.Equal(t, 1, w.Watching())
	assert.Empty(t, w.dirs)
}
