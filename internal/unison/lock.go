package unison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	LockFileName  = ".unisync.lock"
	lockRetryWait = 500 * time.Millisecond
)

var ErrLockNotAcquired = errors.New("run lock not acquired")

// RunLock keeps two wrapper processes from driving unison at the same time.
// A second process waits for the first one instead of failing.
type RunLock struct {
	flock *flock.Flock
}

// NewRunLock returns an unheld lock on the lock file inside dir.
func NewRunLock(dir string) *RunLock {
	return &RunLock{flock: flock.New(filepath.Join(dir, LockFileName))}
}

// Path is the lock file location.
func (l *RunLock) Path() string {
	return l.flock.Path()
}

// Acquire blocks until the lock is held or ctx is done.
func (l *RunLock) Acquire(ctx context.Context, logger *slog.Logger) error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.Path(), err)
	}
	if locked {
		return nil
	}

	logger.Info("waiting for another unisync run to finish", "lock", l.Path())
	locked, err = l.flock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.Path(), err)
	}
	if !locked {
		return ErrLockNotAcquired
	}
	return nil
}

// Release is a no-op when the lock is not held. The lock file is left in place.
func (l *RunLock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	return l.flock.Unlock()
}
