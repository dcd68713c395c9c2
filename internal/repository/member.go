package repository

import (
	"context"

	"transit/internal/domain"
)

// MemberRepository defines the persistence operations for members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetAll(ctx context.Context) ([]*domain.Member, error)
}
