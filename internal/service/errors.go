package service

import (
	"errors"
	"fmt"

	"transit/internal/domain"
)

var (
	// ErrInvalidTransition is returned when the requested status edge is not
	// reachable forward or backward from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidMileage is returned for a missing, non-finite, negative, or
	// monotonicity-violating odometer value.
	ErrInvalidMileage = errors.New("invalid mileage")

	// ErrMissingDriver is returned when a forward transition requires a
	// driver and none is attached to the ride.
	ErrMissingDriver = errors.New("ride has no driver assigned")

	// ErrConflict is returned when a write loses against a concurrent
	// mutation of the same ride; the caller should re-fetch and retry.
	ErrConflict = errors.New("ride was modified concurrently")

	// ErrRideUnderway is returned when changing the scheduled pickup time of
	// a ride whose outbound leg has already started.
	ErrRideUnderway = errors.New("ride already underway")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidMemberID is returned when member ID is empty.
	ErrInvalidMemberID = errors.New("invalid member id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidAddress is returned when a pickup or dropoff address is empty.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPickupTime is returned when the scheduled pickup time is unset.
	ErrInvalidPickupTime = errors.New("invalid scheduled pickup time")

	// ErrReturnAlreadyScheduled is returned when a trip already has a return leg.
	ErrReturnAlreadyScheduled = errors.New("return leg already scheduled")

	// ErrNotRoundTrip is returned when scheduling a return for a ride that is
	// itself a return leg.
	ErrNotRoundTrip = errors.New("cannot schedule a return for a return leg")
)

// TransitionError carries the context a caller needs to decide whether to
// retry, re-fetch, or surface a message: which ride, where it is, and where
// the caller tried to move it.
type TransitionError struct {
	RideID    string
	Current   domain.RideStatus
	Attempted domain.RideStatus
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("ride %s: %v (current=%s attempted=%s)", e.RideID, e.Err, e.Current, e.Attempted)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// MileageError carries context for a rejected odometer value.
type MileageError struct {
	RideID string
	Step   domain.LegStep
	Value  float64
	Reason string
}

func (e *MileageError) Error() string {
	return fmt.Sprintf("ride %s: invalid mileage %.1f at %s: %s", e.RideID, e.Value, e.Step, e.Reason)
}

func (e *MileageError) Unwrap() error { return ErrInvalidMileage }
