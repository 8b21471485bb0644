package credential

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"courier/pkg/logging"
)

// DefaultWatchInterval is the fallback polling interval when fsnotify is
// not available.
const DefaultWatchInterval = 10 * time.Second

// DefaultDebounceInterval is the time to wait before notifying after the
// last file change is detected. A save is a create-then-rename pair, so a
// single logical write produces several events.
const DefaultDebounceInterval = 500 * time.Millisecond

// WatcherConfig holds configuration for the credential file watcher.
type WatcherConfig struct {
	// Path is the credential file to observe.
	Path string

	// WatchInterval is the fallback polling interval when fsnotify is not
	// available.
	WatchInterval time.Duration

	// OnChange is called when the credential file changes. Long-running
	// consumers wire this to Manager.Invalidate so a login or refresh done
	// by another process is picked up without a restart.
	OnChange func()
}

// Watcher monitors the credential file for external writes. The file is a
// shared resource between process invocations: a one-time 'courier auth
// login' and a long-running shell read the same store. It uses fsnotify
// with a fallback to polling for environments where fsnotify is not
// available or reliable.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	// fsWatcher is the fsnotify watcher (nil when falling back to polling)
	fsWatcher *fsnotify.Watcher

	// stopCh signals the watcher to stop
	stopCh chan struct{}

	// running indicates if the watcher is active
	running bool

	// lastModTime tracks the last modification time for fallback polling
	lastModTime time.Time

	// debounceTimer coalesces rapid successive events into one notification
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a watcher for the given credential file.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.WatchInterval == 0 {
		config.WatchInterval = DefaultWatchInterval
	}

	return &Watcher{config: config}
}

// Start begins watching for credential file changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	// The store replaces the file via rename, so the file's own inode is
	// useless to watch. Watch the containing directory and filter events.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("CredentialWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	w.fsWatcher = watcher

	dir := filepath.Dir(w.config.Path)
	if err := w.fsWatcher.Add(dir); err != nil {
		logging.Warn("CredentialWatcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		w.fsWatcher.Close()
		w.fsWatcher = nil
		go w.pollForChanges()
		return nil
	}

	// Capture channels before releasing lock to avoid race conditions with Stop
	eventsCh := w.fsWatcher.Events
	errorsCh := w.fsWatcher.Errors

	go w.processEvents(eventsCh, errorsCh)

	logging.Info("CredentialWatcher", "Watching %s for credential changes", w.config.Path)
	return nil
}

// processEvents handles fsnotify events.
// The channels are passed as parameters to avoid race conditions with Stop().
func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("CredentialWatcher", err, "fsnotify error")
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.config.Path) {
		return
	}

	// Create covers the rename target of an atomic save; Remove covers Clear.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	logging.Debug("CredentialWatcher", "Credential file changed: %s", event.Name)
	w.notifyDebounced()
}

// notifyDebounced invokes OnChange after a debounce period, coalescing the
// event burst a single save produces.
func (w *Watcher) notifyDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.WatchInterval)
	defer ticker.Stop()

	w.updateModTime()

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("CredentialWatcher", "Credential file change detected via polling")
				w.notifyDebounced()
			}
		}
	}
}

// updateModTime stores the current modification time of the credential file.
func (w *Watcher) updateModTime() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if info, err := os.Stat(w.config.Path); err == nil {
		w.lastModTime = info.ModTime()
	} else {
		w.lastModTime = time.Time{}
	}
}

// checkForChanges reports whether the credential file changed since the
// last poll, including appearing or disappearing.
func (w *Watcher) checkForChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	var modTime time.Time
	if info, err := os.Stat(w.config.Path); err == nil {
		modTime = info.ModTime()
	}

	if modTime.Equal(w.lastModTime) {
		return false
	}
	w.lastModTime = modTime
	return true
}

// Stop stops watching for changes.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()
}
