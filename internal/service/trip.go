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

// TripService correlates an outbound ride with its return leg through a
// shared trip id.
type TripService struct {
	rideRepo repository.RideRepository
	guard    *RideGuard
	cache    *redis.CacheStore
}

// NewTripService creates a new TripService. cache may be nil.
func NewTripService(rideRepo repository.RideRepository, guard *RideGuard, cache *redis.CacheStore) *TripService {
	return &TripService{
		rideRepo: rideRepo,
		guard:    guard,
		cache:    cache,
	}
}

// LinkedRide resolves the other leg of a ride's trip, or nil when the ride
// has no trip id or no pair exists yet.
func (s *TripService) LinkedRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.TripID == "" {
		return nil, nil
	}

	group, err := s.rideRepo.GetByTripID(ctx, ride.TripID)
	if err != nil {
		return nil, err
	}

	return domain.FindLinkedRide(ride, group), nil
}

// ScheduleReturnRequest contains the parameters for scheduling a return leg.
type ScheduleReturnRequest struct {
	RideID     string
	PickupTime time.Time
}

// ScheduleReturn creates the return leg for an outbound ride. The return
// ride shares the trip id, swaps the addresses, inherits the outbound
// driver, and starts at RETURN_PENDING. If the outbound ride has no trip id
// yet, one is allocated and written back.
func (s *TripService) ScheduleReturn(ctx context.Context, req ScheduleReturnRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.PickupTime.IsZero() {
		return nil, ErrInvalidPickupTime
	}

	release, err := s.guard.Acquire(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	defer release()

	outbound, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if outbound.IsReturnTrip {
		return nil, ErrNotRoundTrip
	}

	if outbound.TripID != "" {
		group, err := s.rideRepo.GetByTripID(ctx, outbound.TripID)
		if err != nil {
			return nil, err
		}
		if domain.FindLinkedRide(outbound, group) != nil {
			return nil, ErrReturnAlreadyScheduled
		}
	} else {
		expected := outbound.UpdatedAt
		outbound.TripID = uuid.New().String()
		outbound.UpdatedAt = time.Now()
		if err := s.rideRepo.Update(ctx, outbound, expected); err != nil {
			if errors.Is(err, repository.ErrStaleWrite) {
				return nil, ErrConflict
			}
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.InvalidateRide(ctx, outbound.ID)
		}
	}

	now := time.Now()
	ret := &domain.Ride{
		ID:                  uuid.New().String(),
		MemberID:            outbound.MemberID,
		DriverID:            outbound.DriverID,
		TripID:              outbound.TripID,
		IsReturnTrip:        true,
		PickupAddress:       outbound.DropoffAddress,
		DropoffAddress:      outbound.PickupAddress,
		ScheduledPickupTime: req.PickupTime,
		Status:              domain.RideStatusReturnPending,
		PaymentMethod:       outbound.PaymentMethod,
		Recurring:           outbound.Recurring,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.rideRepo.Create(ctx, ret); err != nil {
		return nil, err
	}

	return ret, nil
}

// AuditTripGroups reports every trip id whose ride group is malformed, so
// operators can spot correlation corruption instead of rides silently losing
// their pair.
func (s *TripService) AuditTripGroups(ctx context.Context) ([]domain.TripGroupIssue, error) {
	rides, err := s.rideRepo.List(ctx, repository.RideFilter{})
	if err != nil {
		return nil, err
	}
	return domain.AuditTripGroups(rides), nil
}
