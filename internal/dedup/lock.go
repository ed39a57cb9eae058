package dedup

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// BatchLock serializes dedup batch scans across processes using a file
// lock. A scan over a large corpus is a long O(n^2) job; running two
// against the same snapshot wastes CPU for no new information, so callers
// take this lock before scanning.
// Works on all platforms (Unix, Linux, macOS, Windows).
type BatchLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewBatchLock creates a lock scoped to the given data directory. The
// lock file lives at <dir>/.dedup.lock.
func NewBatchLock(dir string) *BatchLock {
	lockPath := filepath.Join(dir, ".dedup.lock")
	return &BatchLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire takes the lock without blocking. If another process holds it,
// a retryable ERR_204_LOCK_HELD is returned so callers can back off or
// surface "scan already running".
func (l *BatchLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create lock directory", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return ragerr.New(ragerr.ErrCodeLockHeld, "failed to acquire dedup lock", err)
	}
	if !acquired {
		return ragerr.New(ragerr.ErrCodeLockHeld, "dedup scan already running", nil)
	}

	l.locked = true
	return nil
}

// Release drops the lock. Safe to call when the lock is not held.
func (l *BatchLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return ragerr.New(ragerr.ErrCodeLockHeld, "failed to release dedup lock", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *BatchLock) Path() string {
	return l.path
}
