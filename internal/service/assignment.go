package service

import (
	"context"
	"errors"
	"time"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// AssignmentService decides when a ride has a driver. Assigning moves a
// PENDING ride to ASSIGNED; unassigning moves it back. A ride that has
// started can no longer be unassigned.
type AssignmentService struct {
	rideRepo     repository.RideRepository
	driverRepo   repository.DriverRepository
	availability redis.AvailabilityStoreInterface
	guard        *RideGuard
	cache        *redis.CacheStore
}

// NewAssignmentService creates a new AssignmentService. availability and
// cache may be nil.
func NewAssignmentService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	availability redis.AvailabilityStoreInterface,
	guard *RideGuard,
	cache *redis.CacheStore,
) *AssignmentService {
	return &AssignmentService{
		rideRepo:     rideRepo,
		driverRepo:   driverRepo,
		availability: availability,
		guard:        guard,
		cache:        cache,
	}
}

// AssignDriver attaches a driver to a ride or, with an empty driverID,
// detaches the current one. Assignment requires status PENDING; unassignment
// requires status ASSIGNED. Return legs inherit their driver from the
// outbound leg at scheduling time and are never assigned independently.
func (s *AssignmentService) AssignDriver(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
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

	if driverID == "" {
		return s.unassign(ctx, ride)
	}

	if ride.IsReturnTrip {
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: domain.RideStatusAssigned, Err: ErrInvalidTransition}
	}
	if ride.Status != domain.RideStatusPending {
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: domain.RideStatusAssigned, Err: ErrInvalidTransition}
	}

	// Driver must exist; duty status is advisory for the admin view, not a
	// hard precondition.
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	expected := ride.UpdatedAt
	ride.DriverID = driverID
	ride.Status = domain.RideStatusAssigned
	ride.UpdatedAt = time.Now()

	if err := s.save(ctx, ride, expected); err != nil {
		return nil, err
	}

	// A scheduled return leg inherits the outbound driver rather than being
	// assigned on its own.
	s.propagateToReturnLeg(ctx, ride)

	return ride, nil
}

// propagateToReturnLeg copies the outbound driver onto a not-yet-started
// return leg. Best effort: a failure here leaves the return leg driverless
// until the next assignment, it never fails the outbound assignment.
func (s *AssignmentService) propagateToReturnLeg(ctx context.Context, outbound *domain.Ride) {
	if outbound.TripID == "" {
		return
	}
	group, err := s.rideRepo.GetByTripID(ctx, outbound.TripID)
	if err != nil {
		return
	}
	ret := domain.FindLinkedRide(outbound, group)
	if ret == nil || ret.Status != domain.RideStatusReturnPending || ret.DriverID == outbound.DriverID {
		return
	}

	expected := ret.UpdatedAt
	ret.DriverID = outbound.DriverID
	ret.UpdatedAt = time.Now()
	if err := s.rideRepo.Update(ctx, ret, expected); err != nil {
		return
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ret.ID)
	}
}

// unassign detaches the driver from an ASSIGNED ride, returning it to the
// PENDING pool. Rides at STARTED or beyond are in progress and keep their
// driver.
func (s *AssignmentService) unassign(ctx context.Context, ride *domain.Ride) (*domain.Ride, error) {
	if ride.Status != domain.RideStatusAssigned {
		return nil, &TransitionError{RideID: ride.ID, Current: ride.Status, Attempted: domain.RideStatusPending, Err: ErrInvalidTransition}
	}

	expected := ride.UpdatedAt
	ride.DriverID = ""
	ride.Status = domain.RideStatusPending
	ride.UpdatedAt = time.Now()

	if err := s.save(ctx, ride, expected); err != nil {
		return nil, err
	}
	return ride, nil
}

func (s *AssignmentService) save(ctx context.Context, ride *domain.Ride, expected time.Time) error {
	if err := s.rideRepo.Update(ctx, ride, expected); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return ErrConflict
		}
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ride.ID)
	}
	return nil
}

// ListUnassigned returns rides with no driver attached. This is a partition
// on driver id, orthogonal to the status buckets dashboards show.
func (s *AssignmentService) ListUnassigned(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.List(ctx, repository.RideFilter{Unassigned: true})
}

// ListForDriver returns the rides attached to one driver.
func (s *AssignmentService) ListForDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.List(ctx, repository.RideFilter{DriverID: driverID})
}

// OnDutyDrivers returns the driver pool the admin assignment view offers.
func (s *AssignmentService) OnDutyDrivers(ctx context.Context) ([]*domain.Driver, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.availability == nil {
		return drivers, nil
	}

	onDuty, err := s.availability.OnDutyDrivers(ctx)
	if err != nil {
		return nil, err
	}
	pool := make(map[string]bool, len(onDuty))
	for _, id := range onDuty {
		pool[id] = true
	}

	var out []*domain.Driver
	for _, d := range drivers {
		if pool[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

// SetDriverDuty flips a driver's duty status in both the store and the redis
// pool.
func (s *AssignmentService) SetDriverDuty(ctx context.Context, driverID string, onDuty bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	status := domain.DriverStatusOffDuty
	if onDuty {
		status = domain.DriverStatusOnDuty
	}
	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if s.availability != nil {
		if onDuty {
			return s.availability.MarkOnDuty(ctx, driverID)
		}
		return s.availability.MarkOffDuty(ctx, driverID)
	}
	return nil
}
