package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// RideService handles ride intake, lookup, and schedule changes.
type RideService struct {
	rideRepo   repository.RideRepository
	memberRepo repository.MemberRepository
	guard      *RideGuard
	cache      *redis.CacheStore
}

// NewRideService creates a new RideService. cache may be nil.
func NewRideService(
	rideRepo repository.RideRepository,
	memberRepo repository.MemberRepository,
	guard *RideGuard,
	cache *redis.CacheStore,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		memberRepo: memberRepo,
		guard:      guard,
		cache:      cache,
	}
}

// RequestRideRequest contains the parameters for a member ride request.
type RequestRideRequest struct {
	MemberID            string
	PickupAddress       string
	DropoffAddress      string
	ScheduledPickupTime time.Time
	Notes               string
	PaymentMethod       domain.PaymentMethod
	Recurring           bool

	// RoundTrip pre-allocates the trip correlation id; the return leg itself
	// is scheduled later through TripService.ScheduleReturn.
	RoundTrip bool
}

// RequestRide creates a new ride in PENDING with no driver, no mileage, and
// no timestamps.
func (s *RideService) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.Ride, error) {
	if req.MemberID == "" {
		return nil, ErrInvalidMemberID
	}
	if req.PickupAddress == "" || req.DropoffAddress == "" {
		return nil, ErrInvalidAddress
	}
	if req.ScheduledPickupTime.IsZero() {
		return nil, ErrInvalidPickupTime
	}

	if _, err := s.memberRepo.GetByID(ctx, req.MemberID); err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCash
	}

	now := time.Now()
	ride := &domain.Ride{
		ID:                  uuid.New().String(),
		MemberID:            req.MemberID,
		PickupAddress:       req.PickupAddress,
		DropoffAddress:      req.DropoffAddress,
		ScheduledPickupTime: req.ScheduledPickupTime,
		Status:              domain.RideStatusPending,
		Notes:               req.Notes,
		PaymentMethod:       paymentMethod,
		Recurring:           req.Recurring,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.RoundTrip {
		ride.TripID = uuid.New().String()
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	return s.rideRepo.GetByID(ctx, rideID)
}

// GetRideSummary returns the polling view of a ride: status, driver, and
// schedule. Served from the short-TTL cache when possible so driver and
// member apps can poll without hammering the store.
func (s *RideService) GetRideSummary(ctx context.Context, rideID string) (*redis.CachedRide, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetRide(ctx, rideID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	summary := &redis.CachedRide{
		ID:                  ride.ID,
		MemberID:            ride.MemberID,
		DriverID:            ride.DriverID,
		TripID:              ride.TripID,
		IsReturnTrip:        ride.IsReturnTrip,
		Status:              string(ride.Status),
		ScheduledPickupTime: ride.ScheduledPickupTime,
		UpdatedAt:           ride.UpdatedAt,
	}
	if s.cache != nil {
		_ = s.cache.SetRide(ctx, summary)
	}

	return summary, nil
}

// ListRides retrieves rides matching a filter.
func (s *RideService) ListRides(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	return s.rideRepo.List(ctx, filter)
}

// UpdateSchedule changes the scheduled pickup time. The schedule is immutable
// once the outbound leg has started.
func (s *RideService) UpdateSchedule(ctx context.Context, rideID string, pickupTime time.Time) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if pickupTime.IsZero() {
		return nil, ErrInvalidPickupTime
	}

	release, err := s.guard.Acquire(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer release()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Underway() {
		return nil, ErrRideUnderway
	}

	expected := ride.UpdatedAt
	ride.ScheduledPickupTime = pickupTime
	ride.UpdatedAt = time.Now()

	if err := s.rideRepo.Update(ctx, ride, expected); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ride.ID)
	}

	return ride, nil
}

// Dashboard is the categorized view every portal renders from one ride
// snapshot.
type Dashboard struct {
	Categories      domain.Categories
	UnassignedCount int
	TripIssues      []domain.TripGroupIssue
}

// BuildDashboard lists rides once and derives the status buckets, the
// unassigned partition, and the trip correlation audit from that snapshot.
func (s *RideService) BuildDashboard(ctx context.Context, ref time.Time) (*Dashboard, error) {
	rides, err := s.rideRepo.List(ctx, repository.RideFilter{})
	if err != nil {
		return nil, err
	}

	unassigned := 0
	for _, ride := range rides {
		if ride.DriverID == "" {
			unassigned++
		}
	}

	return &Dashboard{
		Categories:      domain.Categorize(rides, ref),
		UnassignedCount: unassigned,
		TripIssues:      domain.AuditTripGroups(rides),
	}, nil
}
