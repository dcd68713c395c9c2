package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RideCacheTTL = 10 * time.Second // Ride status changes mid-trip, keep short
)

// Key prefixes
const (
	rideCachePrefix = "cache:ride:"
)

// CachedRide represents a cached ride entity. Only the fields dashboards poll
// for are cached; detail views go to the store.
type CachedRide struct {
	ID                  string    `json:"id"`
	MemberID            string    `json:"member_id"`
	DriverID            string    `json:"driver_id,omitempty"`
	TripID              string    `json:"trip_id,omitempty"`
	IsReturnTrip        bool      `json:"is_return_trip"`
	Status              string    `json:"status"`
	ScheduledPickupTime time.Time `json:"scheduled_pickup_time"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GetRide retrieves a ride from cache. Returns nil on cache miss.
func (s *CacheStore) GetRide(ctx context.Context, rideID string) (*CachedRide, error) {
	key := rideCachePrefix + rideID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var ride CachedRide
	if err := json.Unmarshal(data, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// SetRide stores a ride in cache.
func (s *CacheStore) SetRide(ctx context.Context, ride *CachedRide) error {
	key := rideCachePrefix + ride.ID
	data, err := json.Marshal(ride)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, RideCacheTTL).Err()
}

// InvalidateRide removes a ride from cache. Called after every successful
// mutation so stale status never reaches a dashboard poll.
func (s *CacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, rideCachePrefix+rideID).Err()
}
