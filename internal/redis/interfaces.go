package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-ride mutation locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// AvailabilityStoreInterface defines the interface for the driver duty pool.
type AvailabilityStoreInterface interface {
	MarkOnDuty(ctx context.Context, driverID string) error
	MarkOffDuty(ctx context.Context, driverID string) error
	OnDutyDrivers(ctx context.Context) ([]string, error)
	IsOnDuty(ctx context.Context, driverID string) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface         = (*LockStore)(nil)
	_ AvailabilityStoreInterface = (*AvailabilityStore)(nil)
)
