package blade

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent reports the outcome of a change seen by Watch.
type WatchEvent struct {
	View    CompiledView
	Removed bool
	Err     error
}

// Watch recompiles views as they change until ctx is done. Every handled
// change is passed to onEvent, which may be nil.
func (e *Engine) Watch(ctx context.Context, onEvent func(WatchEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := e.watchTree(watcher, e.dir); err != nil {
		return err
	}
	e.logger.Info("watching views", "dir", e.dir)

	notify := func(ev WatchEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e.handleEvent(watcher, ev, notify)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watch error", "error", err)
		}
	}
}

func (e *Engine) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, notify func(WatchEvent)) {
	rel, err := filepath.Rel(e.dir, ev.Name)
	if err != nil {
		return
	}
	switch {
	case ev.Has(fsnotify.Create) && isDir(ev.Name):
		if err := e.watchTree(watcher, ev.Name); err != nil {
			e.logger.Error("watch directory", "dir", ev.Name, "error", err)
		}
	case !isViewFile(rel):
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		err := e.Forget(rel)
		notify(WatchEvent{View: CompiledView{Name: e.nameFromPath(filepath.ToSlash(rel)), Path: ev.Name}, Removed: true, Err: err})
		e.logger.Info("view removed", "path", ev.Name)
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		view, err := e.CompileView(rel)
		if isNotExist(err) {
			// removed before we got to it, a Remove event follows
			return
		}
		if err != nil {
			e.logger.Error("compile view", "path", ev.Name, "error", err)
		} else {
			e.logger.Info("view compiled", "name", view.Name)
		}
		notify(WatchEvent{View: view, Err: err})
	}
}

// watchTree adds root and every directory below it to watcher.
func (e *Engine) watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
