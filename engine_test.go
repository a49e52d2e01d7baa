package blade

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	views    string
	cache    string
	compiler *Compiler
	engine   *Engine
}

func newEngineFixture(t *testing.T, files map[string]string) *engineFixture {
	t.Helper()
	f := &engineFixture{views: t.TempDir(), cache: t.TempDir()}
	past := time.Now().Add(-time.Hour)
	for name, contents := range files {
		f.writeView(t, name, contents, past)
	}
	c, err := New(NewLocalFilesystem(), f.cache)
	require.NoError(t, err)
	f.compiler = c
	f.engine = NewEngine(f.views, c)
	return f
}

func (f *engineFixture) writeView(t *testing.T, name, contents string, modified time.Time) {
	t.Helper()
	path := filepath.Join(f.views, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func TestEngine_Load(t *testing.T) {
	f := newEngineFixture(t, map[string]string{
		"layouts/app.blade.php": "<html>@yield('content')</html>",
		"pages/home.blade.php":  "@extends('layouts.app')",
		"legacy.blade":          "{{ $a }}",
		"notes.txt":             "@if",
	})

	compiled, err := f.engine.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, compiled)

	views := f.engine.Views()
	require.Len(t, views, 3)
	assert.Equal(t, "layouts.app", views[0].Name)
	assert.Equal(t, "legacy", views[1].Name)
	assert.Equal(t, "pages.home", views[2].Name)
	for _, v := range views {
		assert.FileExists(t, v.CompiledPath)
		assert.False(t, v.CompiledAt.IsZero())
	}
	assert.FileExists(t, filepath.Join(f.cache, ManifestName))

	compiled, err = f.engine.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, compiled, "fresh artifacts are not compiled again")
}

func TestEngine_ManifestSurvivesRestart(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"home.blade.php": "x"})
	_, err := f.engine.Load()
	require.NoError(t, err)
	before, err := f.engine.View("home")
	require.NoError(t, err)

	restarted := NewEngine(f.views, f.compiler)
	compiled, err := restarted.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, compiled)

	after, err := restarted.View("home")
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.CompiledPath, after.CompiledPath)
	assert.True(t, before.CompiledAt.Equal(after.CompiledAt))
}

func TestEngine_LoadPrunesRemovedViews(t *testing.T) {
	f := newEngineFixture(t, map[string]string{
		"a.blade.php": "a",
		"b.blade.php": "b",
	})
	_, err := f.engine.Load()
	require.NoError(t, err)
	require.Len(t, f.engine.Views(), 2)

	require.NoError(t, os.Remove(filepath.Join(f.views, "b.blade.php")))
	_, err = f.engine.Load()
	require.NoError(t, err)

	views := f.engine.Views()
	require.Len(t, views, 1)
	assert.Equal(t, "a", views[0].Name)
	_, err = f.engine.View("b")
	require.ErrorIs(t, err, ErrViewNotFound)
}

func TestEngine_CorruptManifestIgnored(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"a.blade.php": "a"})
	require.NoError(t, os.WriteFile(filepath.Join(f.cache, ManifestName), []byte("not cbor"), 0o644))

	compiled, err := f.engine.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, compiled)
}

func TestEngine_View(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"pages/home.blade.php": "Hi {{ $name }}"})
	_, err := f.engine.Load()
	require.NoError(t, err)

	for _, name := range []string{"pages.home", "pages/home.blade.php", " 'pages.home' ", "/pages/home"} {
		v, err := f.engine.View(name)
		require.NoError(t, err, name)
		assert.Equal(t, "pages.home", v.Name)
		assert.Equal(t, filepath.Join(f.views, "pages", "home.blade.php"), v.Path)
	}

	_, err = f.engine.View("pages.missing")
	require.ErrorIs(t, err, ErrViewNotFound)
	assert.Contains(t, err.Error(), `"pages.missing"`)
}

func TestEngine_Source(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"home.blade.php": "Hi {{ $name }}"})
	_, err := f.engine.Load()
	require.NoError(t, err)
	path := filepath.Join(f.views, "home.blade.php")

	source, err := f.engine.Source("home")
	require.NoError(t, err)
	assert.Equal(t, "Hi <?php echo e($name); ?><?php /**PATH "+path+" ENDPATH**/ ?>", source)

	f.writeView(t, "home.blade.php", "Bye", time.Now().Add(time.Hour))
	source, err = f.engine.Source("home")
	require.NoError(t, err)
	assert.Equal(t, "Bye<?php /**PATH "+path+" ENDPATH**/ ?>", source)

	_, err = f.engine.Source("missing")
	require.ErrorIs(t, err, ErrViewNotFound)
}

func TestEngine_CompileViewAndForget(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"home.blade.php": "x"})
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return at }

	view, err := f.engine.CompileView("home.blade.php")
	require.NoError(t, err)
	assert.Equal(t, "home", view.Name)
	assert.Equal(t, at, view.CompiledAt)
	assert.Equal(t, f.compiler.CompiledPath(view.Path), view.CompiledPath)

	_, err = f.engine.CompileView("missing.blade.php")
	require.Error(t, err)
	assert.True(t, isNotExist(err))

	require.NoError(t, f.engine.Forget("home.blade.php"))
	assert.Empty(t, f.engine.Views())
}

func TestEngine_WithoutManifest(t *testing.T) {
	f := newEngineFixture(t, map[string]string{"home.blade.php": "x"})
	e := NewEngine(f.views, f.compiler, WithManifestPath(""))
	_, err := e.Load()
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(f.cache, ManifestName))
	assert.Equal(t, f.views, e.Dir())
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"pages.home":               "pages.home",
		"pages/home.blade.php":     "pages.home",
		"pages/home.BLADE.PHP":     "pages.home",
		"legacy.blade":             "legacy",
		`"emails/welcome"`:         "emails.welcome",
		"/admin/users/index.blade": "admin.users.index",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeName(in), in)
	}
}
