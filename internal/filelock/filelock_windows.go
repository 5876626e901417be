//go:build windows

package filelock

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001
	lockRetryInterval       = time.Millisecond
)

// lockFile retries a non-blocking lock. A blocking LockFileEx would pin the
// OS thread and can starve other goroutines.
func lockFile(f *os.File) error {
	for {
		err := tryLockFile(f)
		if !errors.Is(err, ErrLocked) {
			return err
		}
		time.Sleep(lockRetryInterval)
	}
}

func tryLockFile(f *os.File) error {
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		lockfileExclusiveLock|lockfileFailImmediately,
		0, // reserved
		1, // lock 1 byte
		0, // high word
		new(windows.Overlapped),
	)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrLocked
	}
	return err
}

func unlockFile(f *os.File) error {
	return windows.UnlockFileEx(
		windows.Handle(f.Fd()),
		0, // reserved
		1, // unlock 1 byte
		0, // high word
		new(windows.Overlapped),
	)
}
