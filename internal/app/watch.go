package app

import (
	"context"
	"errors"

	"github.com/dshills/plcore/internal/watcher"
)

// Watch loads plugin descriptors created or changed in the configured
// plugin paths until ctx is done. Descriptors whose libraries are already
// tracked load as no-ops.
func (a *Application) Watch(ctx context.Context) error {
	w, err := watcher.New()
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		w.Close()
		return ErrClosed
	}
	a.watcher = w
	a.mu.Unlock()

	for _, path := range a.cfg.Plugins.Paths {
		var err error
		if a.cfg.Plugins.Recursive {
			err = w.WatchRecursive(path)
		} else {
			err = w.Watch(path)
		}
		if err != nil {
			a.log.Warn("watch %s: %v", path, err)
		}
	}
	a.log.Info("watching %d plugin paths", w.Stats().WatchedPaths)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.handle(ev)

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.log.Warn("watcher: %v", err)
		}
	}
}

// StartWatching runs Watch in the background when the plugins.watch
// setting is enabled. Returns false when it is disabled.
func (a *Application) StartWatching(ctx context.Context) bool {
	if !a.cfg.Plugins.Watch {
		return false
	}
	go func() {
		if err := a.Watch(ctx); err != nil && !errors.Is(err, ErrClosed) {
			a.log.Error("watch plugins: %v", err)
		}
	}()
	return true
}

func (a *Application) handle(ev watcher.Event) {
	if !ev.Exists() {
		a.log.Debug("plugin descriptor %s removed", ev.Path)
		return
	}
	if !ev.Op.Has(watcher.OpCreate) && !ev.Op.Has(watcher.OpWrite) {
		return
	}
	if !a.LoadPlugin(ev.Path) {
		a.log.Warn("plugin descriptor %s changed but could not be loaded", ev.Path)
	}
}

// Watching reports whether Watch is running.
func (a *Application) Watching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watcher != nil
}

