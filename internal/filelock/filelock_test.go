package filelock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	require.NoError(t, err)

	_, err = TryLock(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = TryLock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestLockContextTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	require.NoError(t, err)
	defer unlock() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = LockContext(ctx, path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLockContextWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	require.NoError(t, err)
	time.AfterFunc(30*time.Millisecond, func() { _ = unlock() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	second, err := LockContext(ctx, path)
	require.NoError(t, err)
	require.NoError(t, second())
}
