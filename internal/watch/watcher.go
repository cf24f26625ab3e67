// Package watch retries deferred references when their files appear.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/logger"
)

// DefaultDebounce is used when no debounce delay is configured.
const DefaultDebounce = 250 * time.Millisecond

// Target is the loader surface the watcher drives.
type Target interface {
	// Deferred lists the locations of deferred nodes.
	Deferred() []domain.DocumentSourceLocation

	// Retry re-examines deferred nodes.
	Retry(ctx context.Context, names ...string) error
}

// Watcher observes the directories of deferred locations and calls Retry
// once a burst of filesystem events for a deferred file has settled.
type Watcher struct {
	target   Target
	debounce time.Duration
	fsw      *fsnotify.Watcher

	// OnRetry is called after each retry with the paths that triggered it.
	OnRetry func(paths []string, err error)

	mu      sync.Mutex
	dirs    map[string]bool
	waiting map[string]bool
}

// New creates a watcher and starts watching the directories of the
// target's currently deferred locations.
func New(target Target, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		target:   target,
		debounce: debounce,
		fsw:      fsw,
		dirs:     make(map[string]bool),
		waiting:  make(map[string]bool),
	}
	w.sync()
	return w, nil
}

// Watching returns the number of deferred paths being waited for.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiting)
}

// sync refreshes the set of awaited paths and watched directories.
func (w *Watcher) sync() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.waiting = make(map[string]bool)
	for _, loc := range w.target.Deferred() {
		path := filepath.Clean(loc.FullPath())
		w.waiting[path] = true

		dir := filepath.Dir(path)
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			logger.Warn("Cannot watch %s: %v", dir, err)
			continue
		}
		w.dirs[dir] = true
		logger.Debug("Watching %s", dir)
	}
}

func (w *Watcher) awaited(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waiting[filepath.Clean(path)]
}

// Run processes filesystem events until ctx is done or nothing is deferred.
// It returns nil once every deferred node has settled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Watching() == 0 {
		return nil
	}

	var (
		timer     *time.Timer
		fire      <-chan time.Time
		triggered = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.awaited(event.Name) {
				continue
			}
			logger.Debug("Deferred file changed: %s (%s)", event.Name, event.Op)
			triggered[filepath.Clean(event.Name)] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(triggered))
			for p := range triggered {
				paths = append(paths, p)
			}
			triggered = make(map[string]bool)

			err := w.target.Retry(ctx)
			if w.OnRetry != nil {
				w.OnRetry(paths, err)
			}
			if err != nil {
				return err
			}
			w.sync()
			if w.Watching() == 0 {
				logger.Info("No deferred references remain")
				return nil
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
