package userconfig

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Watcher monitors the user config file and calls onChange, debounced, after
// it is written, created or renamed into place.
type Watcher struct {
	path         string
	onChange     func()
	watcher      *fsnotify.Watcher
	logger       *slog.Logger
	mu           sync.Mutex
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
	done         sync.WaitGroup
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.StorageError("failed to create file watcher").WithCause(err).Build()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, ferrors.StorageError("failed to resolve user config path").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:         absPath,
		onChange:     onChange,
		watcher:      watcher,
		logger:       logger,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: 250 * time.Millisecond,
	}, nil
}

// WithDebounce overrides the debounce window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounceTime = d
	return w
}

// Start begins monitoring. The directory is watched rather than the file so
// atomic replacements are seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ferrors.StorageError("failed to create user config directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	if err := w.watcher.Add(dir); err != nil {
		return ferrors.StorageError("failed to watch user config directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	w.logger.Info("Starting user config watcher", "path", w.path)

	w.done.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutines.
func (w *Watcher) Stop(context.Context) error {
	w.mu.Lock()
	select {
	case <-w.stopChan:
		w.mu.Unlock()
		return nil
	default:
		close(w.stopChan)
	}
	err := w.watcher.Close()
	w.mu.Unlock()

	w.done.Wait()
	if err != nil {
		w.logger.Error("Error closing file watcher", "error", err)
	}
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.done.Done()
	file := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.logger.Debug("User config change detected", "file", event.Name, "op", event.Op.String())
				w.trigger()
			case event.Has(fsnotify.Remove):
				w.logger.Warn("User config file removed", "file", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("User config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.done.Done()
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.stopChan:
			stop()
			return
		case <-w.reloadChan:
			stop()
			timer = time.AfterFunc(w.debounceTime, w.onChange)
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reloadChan <- struct{}{}:
	default:
	}
}
