package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 400 * time.Millisecond

// Watch reloads the registry from path whenever the file changes, until ctx
// is cancelled. Editors often replace files via rename, so the parent
// directory is watched and events are filtered by name. A failed reload
// keeps the previous definitions.
func (r *Registry) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var mu sync.Mutex
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := r.LoadFile(path); err != nil {
						logger.Warn("catalog reload failed, keeping previous definitions",
							zap.String("path", path), zap.Error(err))
						return
					}
					logger.Info("catalog reloaded", zap.String("path", path))
				})
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watch error", zap.Error(err))
			}
		}
	}()
	return nil
}
