package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tailorbase/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// CertWatcher watches certificate files and fires a callback after writes
// settle. Events are debounced because certificate rotation usually touches
// the cert and key files in quick succession.
type CertWatcher struct {
	mu sync.Mutex

	files         []string
	modTimes      map[string]time.Time
	debounceDelay time.Duration
	debounceTimer *time.Timer

	watcher  *fsnotify.Watcher
	callback func()
	logger   *errors.Logger

	running bool
	done    chan struct{}
}

// NewCertWatcher creates a watcher over the given certificate files; empty
// paths are skipped
func NewCertWatcher(certFile, keyFile, caFile string, debounceDelay time.Duration, callback func(), logger *errors.Logger) (*CertWatcher, error) {
	var files []string
	for _, f := range []string{certFile, keyFile, caFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no certificate files to watch")
	}

	return &CertWatcher{
		files:         files,
		modTimes:      make(map[string]time.Time),
		debounceDelay: debounceDelay,
		callback:      callback,
		logger:        logger,
		done:          make(chan struct{}),
	}, nil
}

// Start begins watching the certificate files
func (cw *CertWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.watcher = watcher

	for _, file := range cw.files {
		// Watch the directory: rotation tools typically replace files via
		// rename, which drops a watch on the file itself
		if err := watcher.Add(filepath.Dir(file)); err != nil {
			closeErr := watcher.Close()
			if closeErr != nil {
				cw.logger.LogError(closeErr, "Failed to close file watcher")
			}
			return fmt.Errorf("failed to watch %s: %w", file, err)
		}
		if info, err := os.Stat(file); err == nil {
			cw.modTimes[file] = info.ModTime()
		}
	}

	cw.mu.Lock()
	cw.running = true
	cw.mu.Unlock()

	go cw.watchLoop()

	cw.logger.Info("Certificate file watcher started", "files", cw.files)
	return nil
}

// Stop halts the watcher
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = false
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.mu.Unlock()

	close(cw.done)
	return cw.watcher.Close()
}

// IsRunning reports whether the watch loop is active
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// WatchedFiles lists the files under watch
func (cw *CertWatcher) WatchedFiles() []string {
	return append([]string(nil), cw.files...)
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if cw.relevantEvent(event) && cw.anyFileChanged() {
				cw.scheduleReload()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "Certificate watcher error")
		case <-cw.done:
			return
		}
	}
}

// relevantEvent filters directory noise down to writes on watched files
func (cw *CertWatcher) relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	eventPath := filepath.Clean(event.Name)
	for _, file := range cw.files {
		if filepath.Clean(file) == eventPath {
			return true
		}
	}
	return false
}

// anyFileChanged compares modification times to filter duplicate events
func (cw *CertWatcher) anyFileChanged() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	changed := false
	for _, file := range cw.files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if !info.ModTime().Equal(cw.modTimes[file]) {
			cw.modTimes[file] = info.ModTime()
			changed = true
		}
	}
	return changed
}

// scheduleReload (re)arms the debounce timer
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return
	}
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, cw.callback)
}
