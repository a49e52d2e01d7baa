package blade

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ValidFileExtensions are the view file extensions, longest first.
var ValidFileExtensions = []string{".blade.php", ".blade"}

// ManifestName is the file name of the manifest in the cache directory.
const ManifestName = "manifest.cbor"

// Engine compiles a directory of views into the compiler cache.
type Engine struct {
	dir          string
	fs           fs.FS
	compiler     *Compiler
	manifestPath string
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.RWMutex
	views map[string]CompiledView
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithManifestPath overrides where the manifest is kept. An empty path
// disables the manifest.
func WithManifestPath(path string) EngineOption {
	return func(e *Engine) {
		e.manifestPath = path
	}
}

// NewEngine creates an engine for the views under dir.
func NewEngine(dir string, compiler *Compiler, opts ...EngineOption) *Engine {
	e := &Engine{
		dir:          dir,
		fs:           os.DirFS(dir),
		compiler:     compiler,
		manifestPath: filepath.Join(compiler.CachePath(), ManifestName),
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		views:        map[string]CompiledView{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the views directory.
func (e *Engine) Dir() string {
	return e.dir
}

// Load compiles every expired view and returns how many were compiled.
func (e *Engine) Load() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadManifest(); err != nil {
		e.logger.Warn("ignoring unreadable manifest", "path", e.manifestPath, "error", err)
	}

	seen := map[string]struct{}{}
	compiled := 0
	err := fs.WalkDir(e.fs, ".", func(path string, info fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isViewFile(path) {
			return nil
		}
		view, fresh, err := e.compileView(path, false)
		if err != nil {
			return err
		}
		seen[view.Name] = struct{}{}
		if fresh {
			compiled++
		}
		return nil
	})
	if err != nil {
		return compiled, err
	}

	maps.DeleteFunc(e.views, func(name string, _ CompiledView) bool {
		_, ok := seen[name]
		return !ok
	})

	if err := e.saveManifest(); err != nil {
		return compiled, err
	}
	e.logger.Info("views loaded", "dir", e.dir, "views", len(e.views), "compiled", compiled)
	return compiled, nil
}

// CompileView compiles the view at path, relative to the views directory,
// even when its artifact is fresh.
func (e *Engine) CompileView(path string) (CompiledView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	view, _, err := e.compileView(filepath.ToSlash(path), true)
	if err != nil {
		return view, err
	}
	return view, e.saveManifest()
}

// Forget drops the view at path, relative to the views directory.
func (e *Engine) Forget(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.views, e.nameFromPath(filepath.ToSlash(path)))
	return e.saveManifest()
}

// compileView must be called with the lock held. It reports whether the
// artifact was written.
func (e *Engine) compileView(path string, force bool) (CompiledView, bool, error) {
	name := e.nameFromPath(path)
	full := filepath.Join(e.dir, filepath.FromSlash(path))
	view := CompiledView{
		Name:         name,
		Path:         full,
		CompiledPath: e.compiler.CompiledPath(full),
	}
	if prev, ok := e.views[name]; ok && prev.Path == full {
		view.CompiledAt = prev.CompiledAt
	}

	expired := force
	if !expired {
		var err error
		if expired, err = e.compiler.IsExpired(full); err != nil {
			return view, false, err
		}
	}
	if expired {
		if err := e.compiler.Compile(full); err != nil {
			return view, false, fmt.Errorf("[%s] %w", name, err)
		}
		view.CompiledAt = e.now()
		e.logger.Debug("view compiled", "name", name, "compiled", view.CompiledPath)
	}
	e.views[name] = view
	return view, expired, nil
}

// Views returns the known views sorted by name.
func (e *Engine) Views() []CompiledView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	views := slices.Collect(maps.Values(e.views))
	slices.SortFunc(views, func(a, b CompiledView) int {
		return strings.Compare(a.Name, b.Name)
	})
	return views
}

// View looks up a view by name, e.g. "pages.home" or "pages/home.blade.php".
func (e *Engine) View(name string) (CompiledView, error) {
	name = normalizeName(name)
	e.mu.RLock()
	defer e.mu.RUnlock()
	view, ok := e.views[name]
	if !ok {
		return CompiledView{}, fmt.Errorf(`%w: "%s"`, ErrViewNotFound, name)
	}
	return view, nil
}

// Source returns the compiled PHP of a view, compiling it first when the
// artifact is stale.
func (e *Engine) Source(name string) (string, error) {
	view, err := e.View(name)
	if err != nil {
		return "", err
	}
	expired, err := e.compiler.IsExpired(view.Path)
	if err != nil {
		return "", err
	}
	if expired {
		rel, err := filepath.Rel(e.dir, view.Path)
		if err != nil {
			return "", err
		}
		if view, err = e.CompileView(rel); err != nil {
			return "", err
		}
	}
	return e.compiler.files.Get(view.CompiledPath)
}

func (e *Engine) loadManifest() error {
	if e.manifestPath == "" || !e.compiler.files.Exists(e.manifestPath) {
		return nil
	}
	raw, err := e.compiler.files.Get(e.manifestPath)
	if err != nil {
		return err
	}
	views, err := decodeManifest([]byte(raw))
	if err != nil {
		return err
	}
	maps.Copy(e.views, views)
	return nil
}

func (e *Engine) saveManifest() error {
	if e.manifestPath == "" {
		return nil
	}
	data, err := encodeManifest(e.views)
	if err != nil {
		return err
	}
	if err := e.compiler.files.Put(e.manifestPath, string(data)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// nameFromPath converts a slash separated path, relative to the views
// directory, to a view name.
func (e *Engine) nameFromPath(path string) string {
	return normalizeName(path)
}

func isViewFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range ValidFileExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// normalizeName: remove quotes/spaces and view extensions, use dots as separators
func normalizeName(n string) string {
	n = strings.TrimSpace(n)
	n = strings.Trim(n, `"' `)
	lower := strings.ToLower(n)
	for _, ext := range ValidFileExtensions {
		if strings.HasSuffix(lower, ext) {
			n = n[:len(n)-len(ext)]
			break
		}
	}
	n = filepath.ToSlash(n)
	return strings.ReplaceAll(strings.Trim(n, "/"), "/", ".")
}

// isNotExist reports missing files across the wrapping done by the compiler.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
