package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/imgscout/internal/logger"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes and then calls the
// change handler. Bursts of events are coalesced by a debounce timer.
//
// The containing directory is watched rather than the file itself so that
// editors which replace the file on save are still observed.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for store. onChange runs on the watcher's
// timer goroutine after every successful reload.
func NewWatcher(store *ConfigStore, onChange func()) *Watcher {
	if onChange == nil {
		onChange = func() {}
	}
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: defaultWatchDebounce,
	}
}

// SetDebounce overrides the coalescing window.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.store.Path())); err != nil {
		_ = fw.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.watcher = fw
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(watchCtx, fw, w.debounce)
	return nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	var err error
	if fw != nil {
		err = fw.Close()
	}
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, debounce time.Duration) {
	defer w.wg.Done()

	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	target := filepath.Clean(w.store.Path())

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		logger.Warn("config reload %s: %v", w.store.Path(), err)
		return
	}
	logger.Debug("config reloaded from %s", w.store.Path())
	w.onChange()
}
