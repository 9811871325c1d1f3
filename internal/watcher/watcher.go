// Package watcher watches the vector index directory with fsnotify so an
// index rebuilt by another process (the rebuild command) takes effect in a
// running server without a restart.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/vector"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher invalidates cached vector indexes when their on-disk artifacts
// change. Writes are debounced per category because a rebuild touches both
// the vector file and the id file in quick succession.
type Watcher struct {
	dir        string
	invalidate func(models.Category)
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	timers     map[models.Category]*time.Timer
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the settle delay before an invalidation fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher over dir. invalidate is called once per
// changed category after writes settle.
func NewWatcher(dir string, invalidate func(models.Category), logger *zap.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:        dir,
		invalidate: invalidate,
		debounce:   defaultDebounce,
		timers:     make(map[models.Category]*time.Timer),
		done:       make(chan struct{}),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The directory is created if missing so a watcher
// can start before the first rebuild. Runs until ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.logger.Debug("index watcher started", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("index watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	cat, ok := vector.CategoryForFile(filepath.Base(ev.Name))
	if !ok {
		return
	}
	w.logger.Debug("index artifact changed",
		zap.String("op", ev.Op.String()),
		zap.String("path", ev.Name),
		zap.String("category", string(cat)))
	w.schedule(cat)
}

// schedule arms (or re-arms) the per-category debounce timer.
func (w *Watcher) schedule(cat models.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[cat]; ok {
		t.Stop()
	}
	w.timers[cat] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, cat)
		w.mu.Unlock()
		w.logger.Debug("invalidating cached index after on-disk change",
			zap.String("category", string(cat)))
		w.invalidate(cat)
	})
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		close(w.done)
		for cat, t := range w.timers {
			t.Stop()
			delete(w.timers, cat)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
		w.started = false
	})
}
