package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout indicates the index lock could not be acquired in time.
var ErrLockTimeout = errors.New("index lock acquisition timed out")

const (
	minLockPoll = 10 * time.Millisecond
	maxLockPoll = 500 * time.Millisecond
)

// FileLock is an exclusive flock(2) lock guarding an index against concurrent
// writers in other processes. The kernel drops it if the holder dies.
type FileLock struct {
	path string
	file *os.File
	held bool
}

// NewFileLock returns an unlocked lock backed by the file at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file location.
func (l *FileLock) Path() string {
	return l.path
}

// TryLock takes the lock if it is free. It reports false, without error,
// when another holder has it.
func (l *FileLock) TryLock() (bool, error) {
	if l.held {
		return true, nil
	}
	if err := l.open(); err != nil {
		return false, err
	}

	acquired, err := l.flock()
	if err != nil || !acquired {
		l.release()
		return false, err
	}
	l.held = true
	return true, nil
}

// Lock blocks until the lock is acquired, timeout elapses (ErrLockTimeout)
// or ctx is done (ctx.Err()).
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	poll := minLockPoll

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		acquired, err := l.TryLock()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		if !time.Now().Before(deadline) {
			return ErrLockTimeout
		}

		timer := time.NewTimer(min(poll, time.Until(deadline)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			poll = min(poll*2, maxLockPoll)
		}
	}
}

// Unlock releases the lock. Unlocking a lock that is not held is a no-op.
func (l *FileLock) Unlock() error {
	if !l.held {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	l.held = false

	if err != nil {
		return fmt.Errorf("failed to release index lock: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close lock file: %w", closeErr)
	}
	return nil
}

func (l *FileLock) flock() (bool, error) {
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, syscall.EWOULDBLOCK):
		return false, nil
	default:
		return false, fmt.Errorf("flock failed: %w", err)
	}
}

// open creates the lock file and its parent directory.
func (l *FileLock) open() error {

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	l.file = file
	return nil
}

func (l *FileLock) release() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}
