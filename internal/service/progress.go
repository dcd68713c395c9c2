package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// ProgressService is the ride status transition engine. Every call is one
// atomic read-validate-write on a single ride row: forward transitions walk
// the lifecycle one step at a time capturing odometer readings, backward
// transitions are operator corrections.
type ProgressService struct {
	rideRepo repository.RideRepository
	guard    *RideGuard
	cache    *redis.CacheStore
}

// NewProgressService creates a new ProgressService. cache may be nil.
func NewProgressService(rideRepo repository.RideRepository, guard *RideGuard, cache *redis.CacheStore) *ProgressService {
	return &ProgressService{
		rideRepo: rideRepo,
		guard:    guard,
		cache:    cache,
	}
}

// TransitionRequest contains the parameters for a status transition.
type TransitionRequest struct {
	RideID string
	Target domain.RideStatus

	// Mileage is the odometer reading captured with the transition. Required
	// for every forward transition that has a leg step; ignored on rollback.
	Mileage *float64

	// KnownUpdatedAt is the updated_at token from the caller's snapshot of
	// the ride. When set, the transition fails with ErrConflict if the row
	// has moved on since the caller last read it.
	KnownUpdatedAt time.Time
}

// ApplyTransition validates and applies a single status change.
//
// Allowed edges: the immediate next status in lifecycle order (forward), the
// current status itself (an idempotent replay), or any strictly earlier
// status (a correction). COMPLETED -> RETURN_PENDING additionally requires
// the ride to be part of a round trip, and a return ride never moves below
// RETURN_PENDING.
func (s *ProgressService) ApplyTransition(ctx context.Context, req TransitionRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	release, err := s.guard.Acquire(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	defer release()

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if !req.KnownUpdatedAt.IsZero() && !ride.UpdatedAt.Equal(req.KnownUpdatedAt) {
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrConflict}
	}

	curIdx := domain.StatusIndex(ride.Status)
	tgtIdx := domain.StatusIndex(req.Target)

	if curIdx < 0 || tgtIdx < 0 {
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrInvalidTransition}
	}
	if tgtIdx > curIdx+1 {
		// Skipping ahead is never allowed; each leg step must be walked.
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrInvalidTransition}
	}
	if ride.IsReturnTrip && tgtIdx < domain.StatusIndex(domain.RideStatusReturnPending) {
		// A return leg's lifecycle starts at RETURN_PENDING.
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrInvalidTransition}
	}
	if req.Target == domain.RideStatusReturnPending && tgtIdx == curIdx+1 && !ride.HasReturnLeg() {
		// No return scheduled: the ride terminates at COMPLETED.
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrInvalidTransition}
	}

	expected := ride.UpdatedAt
	prev := ride.Status
	now := time.Now()

	switch {
	case tgtIdx < curIdx:
		// Correction: move the cursor back. Downstream mileage and
		// timestamps stay visible as history until a forward re-transition
		// overwrites them.
		ride.Status = req.Target

	default:
		// Forward step or idempotent replay of the current status.
		if tgtIdx >= domain.StatusIndex(domain.RideStatusAssigned) && ride.DriverID == "" {
			return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrMissingDriver}
		}

		if step, ok := domain.StepForStatus(req.Target); ok {
			value, err := s.validateMileage(ride, step, req.Mileage)
			if err != nil {
				return nil, err
			}
			ride.SetMiles(step, value)
			if tgtIdx > curIdx {
				// First pass stamps the step; after a rollback the re-apply
				// deliberately re-stamps so the timestamp matches the
				// corrected pass rather than silently keeping stale history.
				ride.SetStepTime(step, now)
			}
		}
		ride.Status = req.Target
	}

	ride.UpdatedAt = now
	if err := s.rideRepo.Update(ctx, ride, expected); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: req.Target, Err: ErrConflict}
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ride.ID)
	}

	log.Printf("ride %s: %s -> %s", ride.ID, prev, ride.Status)

	return ride, nil
}

// validateMileage checks a transition's odometer reading: present, finite,
// non-negative, and not below any reading already on the ride.
func (s *ProgressService) validateMileage(ride *domain.Ride, step domain.LegStep, mileage *float64) (float64, error) {
	if mileage == nil {
		return 0, &MileageError{RideID: ride.ID, Step: step, Value: 0, Reason: "mileage reading required"}
	}
	value := *mileage
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &MileageError{RideID: ride.ID, Step: step, Value: value, Reason: "not a finite number"}
	}
	if value < 0 {
		return 0, &MileageError{RideID: ride.ID, Step: step, Value: value, Reason: "negative reading"}
	}
	if max, ok := ride.MaxRecordedMiles(); ok && value < max {
		return 0, &MileageError{RideID: ride.ID, Step: step, Value: value, Reason: "below previously recorded reading"}
	}
	return value, nil
}
