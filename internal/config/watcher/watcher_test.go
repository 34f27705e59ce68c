package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, chan Event) {
	t.Helper()

	w, err := New(WithDebounce(20 * time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })
	return w, events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestWatcher_WriteCreateRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	w, events := newTestWatcher(t)
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(path, []byte("[files]\n"), 0o644))
	e := waitEvent(t, events)
	assert.Equal(t, path, e.Path)
	assert.Equal(t, OpWrite, e.Op)

	require.NoError(t, os.Remove(path))
	e = waitEvent(t, events)
	assert.Equal(t, OpRemove, e.Op)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	w, events := newTestWatcher(t)
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	e := waitEvent(t, events)
	assert.Equal(t, path, e.Path)

	select {
	case extra := <-events:
		t.Fatalf("unexpected event %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	w, err := New(WithDebounce(150 * time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })
	require.NoError(t, w.Watch(path))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	waitEvent(t, events)
	select {
	case extra := <-events:
		t.Fatalf("burst produced a second event %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_UnwatchAndClose(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w, err := New()
	require.NoError(t, err)

	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(b))
	require.NoError(t, w.Watch(a))
	assert.Len(t, w.WatchedFiles(), 2)

	require.NoError(t, w.Unwatch(a))
	assert.Equal(t, []string{b}, w.WatchedFiles())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(a), ErrWatcherClosed)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "nope", "settings.toml")))
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "unknown", Operation(7).String())
}
