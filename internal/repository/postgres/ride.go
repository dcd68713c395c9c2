package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, member_id, driver_id, trip_id, is_return_trip,
	pickup_address, dropoff_address, scheduled_pickup_time, status,
	notes, payment_method, recurring,
	start_miles, pickup_miles, end_miles,
	return_start_miles, return_pickup_miles, return_end_miles,
	start_time, pickup_time, end_time,
	return_start_time, return_pickup_time, return_end_time,
	created_at, updated_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	paymentMethod := ride.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCash
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.MemberID,
		nullString(ride.DriverID),
		nullString(ride.TripID),
		ride.IsReturnTrip,
		ride.PickupAddress,
		ride.DropoffAddress,
		ride.ScheduledPickupTime,
		ride.Status,
		ride.Notes,
		paymentMethod,
		ride.Recurring,
		nullFloat(ride.StartMiles),
		nullFloat(ride.PickupMiles),
		nullFloat(ride.EndMiles),
		nullFloat(ride.ReturnStartMiles),
		nullFloat(ride.ReturnPickupMiles),
		nullFloat(ride.ReturnEndMiles),
		nullTime(ride.StartTime),
		nullTime(ride.PickupTime),
		nullTime(ride.EndTime),
		nullTime(ride.ReturnStartTime),
		nullTime(ride.ReturnPickupTime),
		nullTime(ride.ReturnEndTime),
		ride.CreatedAt,
		ride.UpdatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// List retrieves rides matching the filter, newest scheduled first.
func (r *RideRepository) List(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides`

	var conditions []string
	var args []any

	if filter.MemberID != "" {
		args = append(args, filter.MemberID)
		conditions = append(conditions, fmt.Sprintf("member_id = $%d", len(args)))
	}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		conditions = append(conditions, fmt.Sprintf("driver_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Unassigned {
		conditions = append(conditions, "driver_id IS NULL")
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY scheduled_pickup_time DESC LIMIT 500"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRides(rows)
}

// GetByTripID retrieves every ride sharing a trip correlation key.
func (r *RideRepository) GetByTripID(ctx context.Context, tripID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE trip_id = $1 ORDER BY is_return_trip`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRides(rows)
}

// Update writes the ride back only if the stored updated_at still matches the
// token the caller read. Zero rows affected means either a concurrent writer
// won or the row is gone; the follow-up existence check tells them apart.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE rides
		SET driver_id = $1, trip_id = $2, status = $3,
			pickup_address = $4, dropoff_address = $5, scheduled_pickup_time = $6,
			notes = $7, payment_method = $8, recurring = $9,
			start_miles = $10, pickup_miles = $11, end_miles = $12,
			return_start_miles = $13, return_pickup_miles = $14, return_end_miles = $15,
			start_time = $16, pickup_time = $17, end_time = $18,
			return_start_time = $19, return_pickup_time = $20, return_end_time = $21,
			updated_at = $22
		WHERE id = $23 AND updated_at = $24
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		nullString(ride.TripID),
		ride.Status,
		ride.PickupAddress,
		ride.DropoffAddress,
		ride.ScheduledPickupTime,
		ride.Notes,
		ride.PaymentMethod,
		ride.Recurring,
		nullFloat(ride.StartMiles),
		nullFloat(ride.PickupMiles),
		nullFloat(ride.EndMiles),
		nullFloat(ride.ReturnStartMiles),
		nullFloat(ride.ReturnPickupMiles),
		nullFloat(ride.ReturnEndMiles),
		nullTime(ride.StartTime),
		nullTime(ride.PickupTime),
		nullTime(ride.EndTime),
		nullTime(ride.ReturnStartTime),
		nullTime(ride.ReturnPickupTime),
		nullTime(ride.ReturnEndTime),
		ride.UpdatedAt,
		ride.ID,
		expectedUpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, ride.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrStaleWrite
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, tripID sql.NullString
	var startMiles, pickupMiles, endMiles sql.NullFloat64
	var returnStartMiles, returnPickupMiles, returnEndMiles sql.NullFloat64
	var startTime, pickupTime, endTime sql.NullTime
	var returnStartTime, returnPickupTime, returnEndTime sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.MemberID,
		&driverID,
		&tripID,
		&ride.IsReturnTrip,
		&ride.PickupAddress,
		&ride.DropoffAddress,
		&ride.ScheduledPickupTime,
		&ride.Status,
		&ride.Notes,
		&ride.PaymentMethod,
		&ride.Recurring,
		&startMiles,
		&pickupMiles,
		&endMiles,
		&returnStartMiles,
		&returnPickupMiles,
		&returnEndMiles,
		&startTime,
		&pickupTime,
		&endTime,
		&returnStartTime,
		&returnPickupTime,
		&returnEndTime,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.TripID = tripID.String
	ride.StartMiles = floatPtr(startMiles)
	ride.PickupMiles = floatPtr(pickupMiles)
	ride.EndMiles = floatPtr(endMiles)
	ride.ReturnStartMiles = floatPtr(returnStartMiles)
	ride.ReturnPickupMiles = floatPtr(returnPickupMiles)
	ride.ReturnEndMiles = floatPtr(returnEndMiles)
	ride.StartTime = startTime.Time
	ride.PickupTime = pickupTime.Time
	ride.EndTime = endTime.Time
	ride.ReturnStartTime = returnStartTime.Time
	ride.ReturnPickupTime = returnPickupTime.Time
	ride.ReturnEndTime = returnEndTime.Time

	return &ride, nil
}

func scanRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
