package domain

import (
	"fmt"
	"time"
)

// RideStatus represents the current lifecycle status of a ride.
type RideStatus string

const (
	RideStatusPending         RideStatus = "PENDING"
	RideStatusAssigned        RideStatus = "ASSIGNED"
	RideStatusStarted         RideStatus = "STARTED"
	RideStatusPickedUp        RideStatus = "PICKED_UP"
	RideStatusCompleted       RideStatus = "COMPLETED"
	RideStatusReturnPending   RideStatus = "RETURN_PENDING"
	RideStatusReturnStarted   RideStatus = "RETURN_STARTED"
	RideStatusReturnPickedUp  RideStatus = "RETURN_PICKED_UP"
	RideStatusReturnCompleted RideStatus = "RETURN_COMPLETED"
)

// statusOrder is the full lifecycle in forward order. The outbound leg runs
// PENDING through COMPLETED; the return leg continues from COMPLETED when the
// ride is part of a round trip.
var statusOrder = []RideStatus{
	RideStatusPending,
	RideStatusAssigned,
	RideStatusStarted,
	RideStatusPickedUp,
	RideStatusCompleted,
	RideStatusReturnPending,
	RideStatusReturnStarted,
	RideStatusReturnPickedUp,
	RideStatusReturnCompleted,
}

// StatusIndex returns the position of a status in the forward lifecycle order,
// or -1 if the status is not a known value.
func StatusIndex(s RideStatus) int {
	for i, v := range statusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseStatus validates a status string against the lifecycle enum.
func ParseStatus(s string) (RideStatus, error) {
	if StatusIndex(RideStatus(s)) < 0 {
		return "", fmt.Errorf("unknown ride status: %s", s)
	}
	return RideStatus(s), nil
}

// InProgress reports whether a status belongs to the in-progress display
// class. IN_PROGRESS is never persisted; it only exists as this synonym.
func (s RideStatus) InProgress() bool {
	switch s {
	case RideStatusStarted, RideStatusPickedUp, RideStatusReturnStarted, RideStatusReturnPickedUp:
		return true
	}
	return false
}

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodUPI    PaymentMethod = "UPI"
)

// LegStep identifies one odometer capture point on a ride. The first three
// belong to the outbound leg, the rest to the return leg.
type LegStep string

const (
	StepStart        LegStep = "START"
	StepPickup       LegStep = "PICKUP"
	StepEnd          LegStep = "END"
	StepReturnStart  LegStep = "RETURN_START"
	StepReturnPickup LegStep = "RETURN_PICKUP"
	StepReturnEnd    LegStep = "RETURN_END"
)

// legSteps lists every step in monotonic mileage order.
var legSteps = []LegStep{
	StepStart,
	StepPickup,
	StepEnd,
	StepReturnStart,
	StepReturnPickup,
	StepReturnEnd,
}

// LegSteps returns all odometer capture points in monotonic order.
func LegSteps() []LegStep {
	out := make([]LegStep, len(legSteps))
	copy(out, legSteps)
	return out
}

// StepIndex returns the position of a step in monotonic mileage order, or -1
// for an unknown step.
func StepIndex(step LegStep) int {
	for i, v := range legSteps {
		if v == step {
			return i
		}
	}
	return -1
}

// StepForStatus maps a status to the odometer step captured when a ride
// transitions into it. Statuses that carry no odometer reading (PENDING,
// ASSIGNED, RETURN_PENDING) return false.
func StepForStatus(s RideStatus) (LegStep, bool) {
	switch s {
	case RideStatusStarted:
		return StepStart, true
	case RideStatusPickedUp:
		return StepPickup, true
	case RideStatusCompleted:
		return StepEnd, true
	case RideStatusReturnStarted:
		return StepReturnStart, true
	case RideStatusReturnPickedUp:
		return StepReturnPickup, true
	case RideStatusReturnCompleted:
		return StepReturnEnd, true
	}
	return "", false
}

// Ride represents a passenger transportation request in the system. A round
// trip is stored as two correlated rides sharing a TripID: the outbound leg
// (IsReturnTrip=false) and the return leg (IsReturnTrip=true).
type Ride struct {
	ID           string
	MemberID     string
	DriverID     string // empty until a driver is assigned
	TripID       string // empty for rides with no return leg
	IsReturnTrip bool

	PickupAddress  string
	DropoffAddress string

	ScheduledPickupTime time.Time
	Status              RideStatus

	Notes         string
	PaymentMethod PaymentMethod
	Recurring     bool

	// Odometer readings, captured per leg step. Nil until the matching
	// transition has occurred; zero is a valid reading.
	StartMiles        *float64
	PickupMiles       *float64
	EndMiles          *float64
	ReturnStartMiles  *float64
	ReturnPickupMiles *float64
	ReturnEndMiles    *float64

	// Transition timestamps. Zero until the matching transition occurs.
	StartTime        time.Time
	PickupTime       time.Time
	EndTime          time.Time
	ReturnStartTime  time.Time
	ReturnPickupTime time.Time
	ReturnEndTime    time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasReturnLeg reports whether the ride is part of a round trip, which gates
// the COMPLETED -> RETURN_PENDING transition.
func (r *Ride) HasReturnLeg() bool {
	return r.TripID != ""
}

// Underway reports whether the ride's own leg has started. The scheduled
// pickup time is immutable once this is true.
func (r *Ride) Underway() bool {
	if r.IsReturnTrip {
		return StatusIndex(r.Status) >= StatusIndex(RideStatusReturnStarted)
	}
	return StatusIndex(r.Status) >= StatusIndex(RideStatusStarted)
}

// Miles returns the recorded odometer reading for a step, or nil if the step
// has not been reached.
func (r *Ride) Miles(step LegStep) *float64 {
	switch step {
	case StepStart:
		return r.StartMiles
	case StepPickup:
		return r.PickupMiles
	case StepEnd:
		return r.EndMiles
	case StepReturnStart:
		return r.ReturnStartMiles
	case StepReturnPickup:
		return r.ReturnPickupMiles
	case StepReturnEnd:
		return r.ReturnEndMiles
	}
	return nil
}

// SetMiles records an odometer reading for a step.
func (r *Ride) SetMiles(step LegStep, value float64) {
	v := value
	switch step {
	case StepStart:
		r.StartMiles = &v
	case StepPickup:
		r.PickupMiles = &v
	case StepEnd:
		r.EndMiles = &v
	case StepReturnStart:
		r.ReturnStartMiles = &v
	case StepReturnPickup:
		r.ReturnPickupMiles = &v
	case StepReturnEnd:
		r.ReturnEndMiles = &v
	}
}

// StepTime returns the transition timestamp for a step; zero means unset.
func (r *Ride) StepTime(step LegStep) time.Time {
	switch step {
	case StepStart:
		return r.StartTime
	case StepPickup:
		return r.PickupTime
	case StepEnd:
		return r.EndTime
	case StepReturnStart:
		return r.ReturnStartTime
	case StepReturnPickup:
		return r.ReturnPickupTime
	case StepReturnEnd:
		return r.ReturnEndTime
	}
	return time.Time{}
}

// SetStepTime stamps the transition timestamp for a step.
func (r *Ride) SetStepTime(step LegStep, t time.Time) {
	switch step {
	case StepStart:
		r.StartTime = t
	case StepPickup:
		r.PickupTime = t
	case StepEnd:
		r.EndTime = t
	case StepReturnStart:
		r.ReturnStartTime = t
	case StepReturnPickup:
		r.ReturnPickupTime = t
	case StepReturnEnd:
		r.ReturnEndTime = t
	}
}

// MaxRecordedMiles returns the highest odometer value recorded on the ride
// across every leg step, and whether any reading exists at all.
func (r *Ride) MaxRecordedMiles() (float64, bool) {
	var max float64
	found := false
	for _, step := range legSteps {
		if v := r.Miles(step); v != nil {
			if !found || *v > max {
				max = *v
			}
			found = true
		}
	}
	return max, found
}
