package repository

import (
	"context"
	"time"

	"transit/internal/domain"
)

// RideFilter narrows a ride listing. Zero values mean "no constraint".
type RideFilter struct {
	MemberID   string
	DriverID   string
	Status     domain.RideStatus
	Unassigned bool // only rides with no driver attached
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// List retrieves rides matching the filter, newest scheduled first.
	List(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// GetByTripID retrieves every ride sharing a trip correlation key.
	GetByTripID(ctx context.Context, tripID string) ([]*domain.Ride, error)

	// Update writes the ride back if and only if the stored row still
	// carries the expectedUpdatedAt token. Returns ErrStaleWrite when a
	// concurrent writer got there first, ErrNotFound when the row is gone.
	Update(ctx context.Context, ride *domain.Ride, expectedUpdatedAt time.Time) error
}
