package platform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Lock settings
const (
	LockDirName    = "yt-fetch-locks"
	LockRetryDelay = 250 * time.Millisecond
)

// PathLock serializes writers of one output path across goroutines and
// processes.
type PathLock struct {
	lock *flock.Flock
}

// LockPath blocks until the exclusive lock for key is held or ctx is done.
// key is normally the extension-less output path.
func LockPath(ctx context.Context, key string) (*PathLock, error) {
	dir := filepath.Join(os.TempDir(), LockDirName)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName(key)))
	for {
		ok, err := fl.TryLockContext(ctx, LockRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if !ok {
			return nil, fmt.Errorf("lock %s: not acquired", key)
		}
		// The previous holder removes the file on Unlock. A lock taken on
		// the removed file guards nothing, so open the new one and retry.
		if holdsCurrentFile(fl) {
			return &PathLock{lock: fl}, nil
		}
		if err := fl.Unlock(); err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
	}
}

// Unlock removes the lock file and releases the lock. Removal happens while
// the lock is still held, so a waiter never locks a file that is gone.
func (l *PathLock) Unlock() error {
	_ = os.Remove(l.lock.Path())
	return l.lock.Unlock()
}

func holdsCurrentFile(fl *flock.Flock) bool {
	held, err := fl.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(fl.Path())
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

func lockFileName(key string) string {
	abs, err := filepath.Abs(key)
	if err != nil {
		abs = filepath.Clean(key)
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:12]) + ".lock"
}
