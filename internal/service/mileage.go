package service

import (
	"context"
	"errors"
	"math"
	"time"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// MileageService is the odometer correction ledger. Corrections fix a
// previously recorded reading without touching status or timestamps. Edits
// are staged on a draft and only hit the store on Save, so a half-typed
// correction never produces a partial or invalid write.
type MileageService struct {
	rideRepo repository.RideRepository
	guard    *RideGuard
	cache    *redis.CacheStore
}

// NewMileageService creates a new MileageService. cache may be nil.
func NewMileageService(rideRepo repository.RideRepository, guard *RideGuard, cache *redis.CacheStore) *MileageService {
	return &MileageService{
		rideRepo: rideRepo,
		guard:    guard,
		cache:    cache,
	}
}

// MileageCorrection stages odometer edits against a snapshot of a ride.
type MileageCorrection struct {
	ride     *domain.Ride
	expected time.Time
	staged   map[domain.LegStep]float64
}

// NewCorrection loads a ride and opens a correction draft against it.
func (s *MileageService) NewCorrection(ctx context.Context, rideID string) (*MileageCorrection, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	return &MileageCorrection{
		ride:     ride,
		expected: ride.UpdatedAt,
		staged:   make(map[domain.LegStep]float64),
	}, nil
}

// Stage validates and stages one odometer edit. Only steps the ride has
// already reached can be corrected, and the new value must keep the recorded
// readings monotonic across all steps, staged edits included.
func (c *MileageCorrection) Stage(step domain.LegStep, value float64) error {
	if domain.StepIndex(step) < 0 {
		return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "unknown leg step"}
	}
	if c.ride.Miles(step) == nil {
		return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "step has not been reached"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "not a finite number"}
	}
	if value < 0 {
		return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "negative reading"}
	}
	if err := c.checkMonotonic(step, value); err != nil {
		return err
	}

	c.staged[step] = value
	return nil
}

// checkMonotonic verifies value fits between its recorded neighbours, with
// staged edits taking precedence over stored readings.
func (c *MileageCorrection) checkMonotonic(step domain.LegStep, value float64) error {
	idx := domain.StepIndex(step)

	effective := func(s domain.LegStep) *float64 {
		if v, ok := c.staged[s]; ok {
			return &v
		}
		return c.ride.Miles(s)
	}

	for _, other := range domain.LegSteps() {
		if other == step {
			continue
		}
		v := effective(other)
		if v == nil {
			continue
		}
		if domain.StepIndex(other) < idx && *v > value {
			return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "below an earlier recorded reading"}
		}
		if domain.StepIndex(other) > idx && *v < value {
			return &MileageError{RideID: c.ride.ID, Step: step, Value: value, Reason: "above a later recorded reading"}
		}
	}
	return nil
}

// Save commits every staged edit in one optimistic write. The draft's
// snapshot token guards against a transition that landed since the draft was
// opened; on ErrConflict the caller re-fetches and re-stages.
func (s *MileageService) Save(ctx context.Context, c *MileageCorrection) (*domain.Ride, error) {
	if len(c.staged) == 0 {
		return c.ride, nil
	}

	release, err := s.guard.Acquire(ctx, c.ride.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	for step, value := range c.staged {
		c.ride.SetMiles(step, value)
	}
	c.ride.UpdatedAt = time.Now()

	if err := s.rideRepo.Update(ctx, c.ride, c.expected); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, c.ride.ID)
	}

	return c.ride, nil
}

// EditMileage corrects a single odometer reading: stage plus save in one
// call, for callers that don't batch.
func (s *MileageService) EditMileage(ctx context.Context, rideID string, step domain.LegStep, value float64) (*domain.Ride, error) {
	correction, err := s.NewCorrection(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := correction.Stage(step, value); err != nil {
		return nil, err
	}
	return s.Save(ctx, correction)
}
