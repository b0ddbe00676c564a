//go:build !unix

package analysis

import "context"

// FileLock falls back to an in-process lock keyed by path on platforms
// without flock.
type FileLock struct {
	l Lock
}

// NewFileLock returns a lock on path.
func NewFileLock(path string) *FileLock {
	return &FileLock{l: DefaultLocks.Lock("file:" + path)}
}

// Lock blocks until the lock is held or ctx is done.
func (l *FileLock) Lock(ctx context.Context) error { return l.l.Lock(ctx) }

// Unlock releases the lock.
func (l *FileLock) Unlock() { l.l.Unlock() }
