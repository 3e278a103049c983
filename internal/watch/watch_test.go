package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesWrites(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "cloud.ply")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := New(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(path))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-w.Changes():
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// the burst collapses into a single notification
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected second change %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "cloud.ply")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := New(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ply"), []byte("b"), 0o644))

	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}
