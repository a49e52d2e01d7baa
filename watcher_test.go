package blade

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Watch(t *testing.T) {
	f := newEngineFixture(t, nil)
	require.NoError(t, os.Mkdir(filepath.Join(f.views, "pages"), 0o755))

	events := make(chan WatchEvent, 256)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.engine.Watch(ctx, func(ev WatchEvent) {
			select {
			case events <- ev:
			default:
			}
		})
	}()

	path := filepath.Join(f.views, "pages", "welcome.blade.php")
	// the watch is set up asynchronously, keep touching the file until it is seen
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("{{ $a }}"), 0o644)
		return waitEvent(events, func(ev WatchEvent) bool {
			return ev.View.Name == "pages.welcome" && !ev.Removed && ev.Err == nil
		})
	}, 5*time.Second, 50*time.Millisecond)

	view, err := f.engine.View("pages.welcome")
	require.NoError(t, err)
	assert.FileExists(t, view.CompiledPath)

	require.NoError(t, os.WriteFile(filepath.Join(f.views, "pages", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		return waitEvent(events, func(ev WatchEvent) bool {
			return ev.View.Name == "pages.welcome" && ev.Removed
		})
	}, 5*time.Second, 50*time.Millisecond)
	_, err = f.engine.View("pages.welcome")
	require.ErrorIs(t, err, ErrViewNotFound)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

// waitEvent drains buffered events and reports whether one matched.
func waitEvent(events <-chan WatchEvent, match func(WatchEvent) bool) bool {
	for {
		select {
		case ev := <-events:
			if match(ev) {
				return true
			}
		default:
			return false
		}
	}
}
