package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls a file and reports when its modification time moves
// past the baseline. The annotator uses it to pick up edits to the tag
// catalogue while running.
type FileWatcher struct {
	path          string
	checkInterval time.Duration

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	onChange func(path string)
}

// NewFileWatcher creates a watcher for path. Returns nil if the file cannot
// be stat'ed.
func NewFileWatcher(path string, checkInterval time.Duration) *FileWatcher {
	// Resolve symlinks so that editors which replace the target are seen
	realPath, err := filepath.EvalSymlinks(path)
	if err == nil {
		path = realPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	return &FileWatcher{
		path:          path,
		checkInterval: checkInterval,
		baseline:      info.ModTime(),
	}
}

// OnChange sets the callback to invoke when the file changes.
// The callback is called from a background goroutine - use appropriate
// synchronization if updating UI.
func (w *FileWatcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	w.mu.Lock()
	// Create a fresh stop channel in case we're restarting
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop stops the watcher goroutine. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *FileWatcher) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares the file against the baseline once. On a change it
// advances the baseline, calls the callback and returns true.
func (w *FileWatcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	if !info.ModTime().After(w.baseline) {
		w.mu.Unlock()
		return false
	}
	w.baseline = info.ModTime()
	callback := w.onChange
	w.mu.Unlock()

	if callback != nil {
		callback(w.path)
	}
	return true
}
