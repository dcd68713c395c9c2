package service

import (
	"context"
	"sync"
	"time"

	"transit/internal/redis"
)

const rideLockTTL = 15 * time.Second

// RideGuard serializes mutations per ride id. Within a process a keyed mutex
// guarantees two transitions on the same ride never interleave; when a redis
// lock store is attached the guarantee extends across service instances.
// Operations on different ride ids never block each other.
type RideGuard struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	lockStore redis.LockStoreInterface // optional
}

// NewRideGuard creates a RideGuard. lockStore may be nil for single-instance
// deployments and tests.
func NewRideGuard(lockStore redis.LockStoreInterface) *RideGuard {
	return &RideGuard{
		locks:     make(map[string]*sync.Mutex),
		lockStore: lockStore,
	}
}

// Acquire takes the per-ride lock and returns a release function. When the
// distributed lock is already held elsewhere, Acquire fails with ErrConflict
// so the caller can re-fetch and retry instead of blocking.
func (g *RideGuard) Acquire(ctx context.Context, rideID string) (func(), error) {
	g.mu.Lock()
	lock, ok := g.locks[rideID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[rideID] = lock
	}
	g.mu.Unlock()

	lock.Lock()

	if g.lockStore != nil {
		acquired, err := g.lockStore.AcquireRideLock(ctx, rideID, rideLockTTL)
		if err != nil {
			lock.Unlock()
			return nil, err
		}
		if !acquired {
			lock.Unlock()
			return nil, ErrConflict
		}
		return func() {
			_ = g.lockStore.ReleaseRideLock(ctx, rideID)
			lock.Unlock()
		}, nil
	}

	return lock.Unlock, nil
}
