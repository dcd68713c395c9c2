package repository

import (
	"context"

	"transit/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	GetAll(ctx context.Context) ([]*domain.Driver, error)
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}
