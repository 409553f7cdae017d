package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"routekit/logging"
	"routekit/metrics"
	"routekit/registry"
)

// WatcherStats tracks reload activity.
type WatcherStats struct {
	Reloads      int
	Failures     int
	LastReload   time.Time
	LastError    string
	LastProfiles int
}

// Watcher reloads a profile configuration file on change and swaps the
// resulting snapshot into a registry store. A failed reload keeps the
// last good snapshot in service.
type Watcher struct {
	mu       sync.RWMutex
	path     string
	store    *registry.Store
	log      *logging.Logger
	fsw      *fsnotify.Watcher
	pending  time.Time // zero when no change is waiting out the debounce
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    WatcherStats
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Path is the profile configuration file to watch. Required.
	Path string

	// Store receives reloaded snapshots. Required.
	Store *registry.Store

	// Logger receives reload events. Nil disables logging.
	Logger *logging.Logger

	// Debounce is how long a change must settle before reloading.
	// Zero means 500ms.
	Debounce time.Duration
}

// NewWatcher creates a Watcher. Call Start to begin watching.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		path:     cfg.Path,
		store:    cfg.Store,
		log:      cfg.Logger,
		fsw:      fsw,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching the configuration file. Non-blocking. The
// parent directory is watched rather than the file itself, so
// atomic-rename saves (editor writes, configmap updates) are seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		// The event loop never started, so unwind: Stop must not wait
		// on a loop that does not exist.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.fsw.Close()
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()

	if w.log != nil {
		w.log.WatcherStopped(w.path)
	}
}

// run is the watcher event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

		case <-ticker.C:
			w.processPending()
		}
	}
}

// handleEvent records a relevant filesystem event for debounced reload.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// processPending reloads once a recorded change has settled past the
// debounce window.
func (w *Watcher) processPending() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.Reload()
}

// Reload loads the configuration file now and swaps the snapshot in on
// success. Safe to call directly, e.g. on SIGHUP.
func (w *Watcher) Reload() error {
	res, err := Load(w.path)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("failed").Inc()
		w.mu.Lock()
		w.stats.Failures++
		w.stats.LastError = err.Error()
		w.mu.Unlock()
		if w.log != nil {
			w.log.ReloadFailed(w.path, err)
		}
		return err
	}

	if err := w.store.Swap(res.Snapshot); err != nil {
		metrics.ReloadsTotal.WithLabelValues("failed").Inc()
		w.mu.Lock()
		w.stats.Failures++
		w.stats.LastError = err.Error()
		w.mu.Unlock()
		if w.log != nil {
			w.log.ReloadFailed(w.path, err)
		}
		return err
	}

	metrics.ReloadsTotal.WithLabelValues("success").Inc()
	metrics.ProfilesLoaded.Set(float64(res.Snapshot.Len()))

	w.mu.Lock()
	w.stats.Reloads++
	w.stats.LastReload = time.Now()
	w.stats.LastProfiles = res.Snapshot.Len()
	w.mu.Unlock()

	if w.log != nil {
		w.log.SnapshotSwapped(res.Snapshot.Len(), w.path)
	}
	return nil
}

// Stats returns a copy of the reload statistics.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the watcher loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
