// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk and notifies
// a callback with the freshly loaded configuration. Editor write
// patterns (truncate, rename-over) produce bursts of events, so changes
// are debounced before reloading.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)
	log      *zap.Logger

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending bool
	lastEvt time.Time
}

// NewWatcher creates a watcher for the given config path. onChange runs
// on the watcher goroutine with the reloaded config; it must not block.
func NewWatcher(path string, onChange func(*Config), log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
		log:      log,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. The parent directory is watched rather than the
// file itself so that rename-over saves keep working.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(w.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.lastEvt = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) processPending() {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-tick.C:
			w.mu.Lock()
			ready := w.pending && time.Since(w.lastEvt) >= w.debounce
			if ready {
				w.pending = false
			}
			w.mu.Unlock()
			if !ready {
				continue
			}

			cfg, err := LoadFromPath(w.path)
			if err != nil {
				w.log.Warn("config reload failed", zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path))
			w.onChange(cfg)
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
