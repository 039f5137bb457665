package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ProjectWatcher watches a project directory tree and reports definition
// file changes. Bursts of events are coalesced into one callback once the
// tree has been quiet for the debounce period.
type ProjectWatcher struct {
	dir      string
	debounce time.Duration
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewProjectWatcher creates a watcher for dir.
func NewProjectWatcher(dir string, debounce time.Duration, logger zerolog.Logger) (*ProjectWatcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &ProjectWatcher{
		dir:      absDir,
		debounce: debounce,
		logger:   logger,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start watches the tree and calls fn after each burst of changes.
// fn is never called concurrently with itself.
func (w *ProjectWatcher) Start(fn func()) error {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var fnMu sync.Mutex
	fire := func() {
		fnMu.Lock()
		defer fnMu.Unlock()
		fn()
	}

	go w.loop(fire)

	w.logger.Info().Str("dir", w.dir).Msg("watching project for changes")
	return nil
}

// Stop stops watching.
func (w *ProjectWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *ProjectWatcher) loop(fire func()) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event, fire)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("project watcher error")

		case <-w.stopCh:
			return
		}
	}
}

func (w *ProjectWatcher) handle(event fsnotify.Event, fire func()) {
	// New subdirectories are watched too
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Error().Err(err).Str("dir", event.Name).Msg("watch new directory failed")
			}
			return
		}
	}

	if !isDefinitionFile(event.Name) {
		return
	}

	w.logger.Debug().
		Str("event", event.Op.String()).
		Str("file", event.Name).
		Msg("project file changed")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		fire()
	})
}

func isDefinitionFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
