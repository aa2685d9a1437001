// Package lock serializes mcbuilder invocations on one pack directory.
//
// The lock is an advisory file lock on ".mcbuilder.lock" inside the pack
// directory. [Acquire] waits until the lock is free; only cancelling the
// context ends the wait.
package lock

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

// FileName is the lock file inside a pack directory.
const FileName = ".mcbuilder.lock"

// retryDelay is how often a waiting Acquire polls the lock.
const retryDelay = 250 * time.Millisecond

// Lock is a held pack directory lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock for dir. When another process holds it, onWait
// (if non-nil) is called once and Acquire blocks until the lock is
// released or ctx is done, in which case it fails with LOCK_TIMEOUT.
func Acquire(ctx context.Context, dir string, onWait func()) (*Lock, error) {
	fl := flock.New(filepath.Join(dir, FileName))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLockTimeout, err, "lock %s", dir)
	}
	if !locked {
		if onWait != nil {
			onWait()
		}
		locked, err = fl.TryLockContext(ctx, retryDelay)
		if err != nil || !locked {
			if err == nil {
				err = ctx.Err()
			}
			return nil, errors.Wrap(errors.ErrCodeLockTimeout, err, "pack directory %s is locked by another process", dir)
		}
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
