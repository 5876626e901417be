package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, files []string) *atomic.Int32 {
	t.Helper()

	var calls atomic.Int32
	w, err := New(files, func() { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx, nil)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return &calls
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	todo := filepath.Join(dir, "todo.txt")
	require.NoError(t, os.WriteFile(todo, nil, 0o600))

	calls := startWatcher(t, []string{todo})

	for i := range 5 {
		require.NoError(t, os.WriteFile(todo, []byte{byte('a' + i)}, 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(3 * debounceDelay)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherSeesAtomicRename(t *testing.T) {
	dir := t.TempDir()
	todo := filepath.Join(dir, "todo.txt")
	require.NoError(t, os.WriteFile(todo, nil, 0o600))

	calls := startWatcher(t, []string{todo})

	tmp := filepath.Join(dir, ".todo.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("Buy milk\n"), 0o600))
	require.NoError(t, os.Rename(tmp, todo))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	todo := filepath.Join(dir, "todo.txt")
	require.NoError(t, os.WriteFile(todo, nil, 0o600))

	calls := startWatcher(t, []string{todo})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o600))
	time.Sleep(3 * debounceDelay)
	assert.Equal(t, int32(0), calls.Load())
}
