package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// MemberRepository is a PostgreSQL implementation of repository.MemberRepository.
type MemberRepository struct {
	q Querier
}

// NewMemberRepository creates a new PostgreSQL member repository.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{q: db}
}

// Create persists a new member.
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, name, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.Address,
		member.CreatedAt,
	)

	return err
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT id, name, phone, address, created_at FROM members WHERE id = $1`

	var member domain.Member
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.Phone,
		&member.Address,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &member, nil
}

// GetAll retrieves all members.
func (r *MemberRepository) GetAll(ctx context.Context) ([]*domain.Member, error) {
	query := `SELECT id, name, phone, address, created_at FROM members ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.Phone,
			&member.Address,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, &member)
	}
	return members, rows.Err()
}
