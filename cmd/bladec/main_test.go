package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	config string
	views  string
	cache  string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	f := &cliFixture{
		config: filepath.Join(dir, "bladec.yaml"),
		views:  filepath.Join(dir, "views"),
		cache:  filepath.Join(dir, "cache"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(f.views, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.views, "pages", "home.blade.php"), []byte("@hello {{ $a }}"), 0o644))
	config := "views: " + f.views + "\ncache: " + f.cache + "\ndirectives:\n  hello: \"<b>hi</b>\"\nlog_level: error\n"
	require.NoError(t, os.WriteFile(f.config, []byte(config), 0o644))
	return f
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", f.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCmd_Stdin(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run(t, "@hello @if($a) x @endif", "compile", "-")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b> <?php if($a): ?> x <?php endif; ?>", out)
}

func TestCompileCmd_File(t *testing.T) {
	f := newCLIFixture(t)
	path := filepath.Join(f.views, "pages", "home.blade.php")

	out, err := f.run(t, "", "compile", path)
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b> <?php echo e($a); ?>", out)

	out, err = f.run(t, "", "compile", "--write", path)
	require.NoError(t, err)
	compiled := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(compiled, f.cache))
	assert.FileExists(t, compiled)

	_, err = f.run(t, "", "compile", "-w", "-")
	require.ErrorContains(t, err, "--write needs a file")

	_, err = f.run(t, "", "compile", filepath.Join(f.views, "missing.blade.php"))
	require.ErrorContains(t, err, "error opening file")
}

func TestBuildCmd(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run(t, "", "build")
	require.NoError(t, err)
	assert.Equal(t, "1 views, 1 compiled\n", out)
	assert.FileExists(t, filepath.Join(f.cache, "manifest.cbor"))
}

func TestLintCmd(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run(t, "@hello @endiff", "lint", "-")
	require.ErrorContains(t, err, "1 problems found")
	assert.Equal(t, "-:1:8: unknown directive @endiff is left as text, did you mean @endif?\n", out)

	out, err = f.run(t, "@hello", "lint", "-")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPathCmd(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run(t, "", "path", "/views/home.blade.php")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.cache, "1cab6fca42ec36d32f3928d7d36f4b516f750301.php")+"\n", out)
}

func TestViewsFlagOverridesConfig(t *testing.T) {
	f := newCLIFixture(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "a.blade.php"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(other, "b.blade.php"), []byte("b"), 0o644))

	out, err := f.run(t, "", "--views", other, "build")
	require.NoError(t, err)
	assert.Equal(t, "2 views, 2 compiled\n", out)
}
