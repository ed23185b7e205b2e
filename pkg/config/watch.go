// pkg/config/watch.go
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watcher watches the config file for changes and reloads the manager
// when modifications are detected, so scan settings can be tuned while
// a watch loop is running.
type Watcher struct {
	manager *Manager
	path    string
	watcher *fsnotify.Watcher

	// debounceDelay coalesces rapid successive writes into one reload.
	debounceDelay time.Duration

	logger zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher reloading manager from path on change.
func NewWatcher(manager *Manager, path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager:       manager,
		path:          path,
		watcher:       watcher,
		debounceDelay: 100 * time.Millisecond,
		logger:        log.With().Str("component", "config.watcher").Logger(),
	}, nil
}

// Start begins watching the config file. It blocks until the context is
// canceled and should run on its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	// fsnotify watches directories, not files, so watch the parent and
	// filter events down to our file.
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)

	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch config directory")
		return err
	}

	w.logger.Info().Str("file", w.path).Msg("Started watching config file")

	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.logger.Debug().
					Str("op", event.Op.String()).
					Str("file", event.Name).
					Msg("Detected config file change")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// scheduleReload schedules a reload after the debounce delay, resetting
// any timer already pending.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if err := w.manager.Reload(w.path); err != nil {
			w.logger.Error().Err(err).Msg("Failed to reload config")
		} else {
			w.logger.Info().Msg("Config reloaded")
		}
	})
}
