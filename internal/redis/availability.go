package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const onDutyKey = "drivers:on_duty"

// AvailabilityStore tracks which drivers are currently on duty. Admin
// assignment views read this pool when attaching a driver to a ride.
type AvailabilityStore struct {
	client *redis.Client
}

// NewAvailabilityStore creates a new AvailabilityStore.
func NewAvailabilityStore(client *redis.Client) *AvailabilityStore {
	return &AvailabilityStore{client: client}
}

// MarkOnDuty adds a driver to the on-duty pool.
func (s *AvailabilityStore) MarkOnDuty(ctx context.Context, driverID string) error {
	return s.client.SAdd(ctx, onDutyKey, driverID).Err()
}

// MarkOffDuty removes a driver from the on-duty pool.
func (s *AvailabilityStore) MarkOffDuty(ctx context.Context, driverID string) error {
	return s.client.SRem(ctx, onDutyKey, driverID).Err()
}

// OnDutyDrivers returns the IDs of all drivers currently on duty.
func (s *AvailabilityStore) OnDutyDrivers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, onDutyKey).Result()
}

// IsOnDuty reports whether a driver is in the on-duty pool.
func (s *AvailabilityStore) IsOnDuty(ctx context.Context, driverID string) (bool, error) {
	return s.client.SIsMember(ctx, onDutyKey, driverID).Result()
}
