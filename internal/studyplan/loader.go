package studyplan

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// Loader holds the current plan. With an override path it can watch the
// file and swap in edits; a bad edit keeps the previous plan.
type Loader struct {
	path string
	log  *logging.Logger

	mu   sync.RWMutex
	plan *Plan

	watcher  *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
	done     chan struct{}
}

// NewLoader returns a loader serving the file at path, or the built-in plan
// when path is empty.
func NewLoader(path string, log *logging.Logger) (*Loader, error) {
	l := &Loader{
		log:      log.Sub("studyplan"),
		debounce: 200 * time.Millisecond,
	}
	if path == "" {
		l.plan = Default()
		return l, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving study plan path: %w", err)
	}
	p, err := Load(abs)
	if err != nil {
		return nil, err
	}
	l.path = abs
	l.plan = p
	l.log.Info().Str("path", abs).Msg("study plan loaded")
	return l, nil
}

// Current returns the plan in effect.
func (l *Loader) Current() *Plan {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.plan
}

// Reload re-reads the override file. On error the previous plan stays.
func (l *Loader) Reload() error {
	if l.path == "" {
		return nil
	}
	p, err := Load(l.path)
	if err != nil {
		l.log.Error().Err(err).Str("path", l.path).Msg("study plan reload failed, keeping previous")
		return err
	}

	l.mu.Lock()
	l.plan = p
	l.mu.Unlock()
	l.log.Info().Str("path", l.path).Msg("study plan reloaded")
	return nil
}

// Watch starts reloading on file changes. It is a no-op for the built-in plan.
func (l *Loader) Watch() error {
	if l.path == "" || l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	// editors often replace the file, so watch the directory
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(l.path), err)
	}

	l.watcher = w
	l.stopCh = make(chan struct{})
	l.done = make(chan struct{})
	go l.run()
	return nil
}

// Close stops the watcher if one is running.
func (l *Loader) Close() error {
	if l.watcher == nil {
		return nil
	}
	close(l.stopCh)
	err := l.watcher.Close()
	<-l.done

	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.mu.Unlock()
	l.watcher = nil
	return err
}

func (l *Loader) run() {
	defer close(l.done)
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				l.log.Debug().Str("op", event.Op.String()).Msg("study plan changed")
				l.scheduleReload()
			}

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.log.Error().Err(err).Msg("study plan watcher error")

		case <-l.stopCh:
			return
		}
	}
}

// scheduleReload debounces bursts of write events into one reload.
func (l *Loader) scheduleReload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() { _ = l.Reload() })
}
