// Package filelock provides advisory file locking that serializes the
// load-modify-save cycle on a todo directory across processes.
package filelock

import (
	"context"
	"errors"
	"os"
	"time"
)

const (
	lockFileMode = 0o600
	pollInterval = 10 * time.Millisecond
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if it does not exist, and blocks until the lock is available. The returned
// function releases the lock.
func Lock(path string) (unlock func() error, err error) {
	return acquire(path, lockFile)
}

// TryLock is Lock without waiting. It returns ErrLocked when the lock is
// already held.
func TryLock(path string) (unlock func() error, err error) {
	return acquire(path, tryLockFile)
}

// LockContext polls TryLock until the lock is acquired or ctx is done.
func LockContext(ctx context.Context, path string) (unlock func() error, err error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		unlock, err := TryLock(path)
		if !errors.Is(err, ErrLocked) {
			return unlock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func acquire(path string, lock func(*os.File) error) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	if err := lock(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
