package logbook

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// ConfigWatcher reports changes of the card configuration file. The parent
// directory is watched so editors that replace the file are still seen.
// Bursts of events are collapsed into one after the debounce delay.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	events   chan model.FileEvent

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// NewConfigWatcher starts watching path.
func NewConfigWatcher(path string, debounce time.Duration) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	cw := &ConfigWatcher{
		watcher:  watcher,
		path:     abs,
		debounce: debounce,
		events:   make(chan model.FileEvent, 1),
		done:     make(chan struct{}),
	}
	go cw.processEvents()
	return cw, nil
}

func (cw *ConfigWatcher) processEvents() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cw.schedule(event.Op.String())

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Config watch error", util.F("error", err.Error()))

		case <-cw.done:
			return
		}
	}
}

func (cw *ConfigWatcher) schedule(op string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		select {
		case cw.events <- model.FileEvent{Path: cw.path, Operation: op}:
		case <-cw.done:
		default:
			// a reload is already pending
		}
	})
}

// Events returns the channel of debounced change events
func (cw *ConfigWatcher) Events() <-chan model.FileEvent {
	return cw.events
}

// Close stops watching
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()

	select {
	case <-cw.done:
		return nil
	default:
		close(cw.done)
	}
	return cw.watcher.Close()
}
