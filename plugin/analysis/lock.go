package analysis

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Lock excludes concurrent analysis runs that share a resource, such as the
// local data file. Lock blocks until the lock is held or ctx is done.
type Lock interface {
	Lock(ctx context.Context) error
	Unlock()
}

// LockRegistry hands out in-process locks keyed by resource id. Every
// coordinator given the same registry and id is serialised with every other.
type LockRegistry struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLockRegistry returns an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{sems: make(map[string]*semaphore.Weighted)}
}

// DefaultLocks is the process-wide registry used when no Lock is configured.
var DefaultLocks = NewLockRegistry()

// Lock returns the lock for resource.
func (r *LockRegistry) Lock(resource string) Lock {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.sems[resource]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.sems[resource] = sem
	}
	return semLock{sem: sem}
}

type semLock struct {
	sem *semaphore.Weighted
}

func (l semLock) Lock(ctx context.Context) error { return l.sem.Acquire(ctx, 1) }
func (l semLock) Unlock()                        { l.sem.Release(1) }
