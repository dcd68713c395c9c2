package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// RIDE LIFECYCLE: FORWARD TRANSITIONS
// ──────────────────────────────────────────────

func mileage(v float64) *float64 {
	return &v
}

func newProgressService(rideRepo *MockRideRepository) *service.ProgressService {
	return service.NewProgressService(rideRepo, service.NewRideGuard(nil), nil)
}

func TestProgress_FullOutboundLifecycle(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		MemberID:  "member-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	ride, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	})
	if err != nil {
		t.Fatalf("started: unexpected error: %v", err)
	}
	if ride.StartMiles == nil || *ride.StartMiles != 100 {
		t.Errorf("expected start miles 100, got %v", ride.StartMiles)
	}
	if ride.StartTime.IsZero() {
		t.Error("expected start time to be stamped")
	}

	ride, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusPickedUp, Mileage: mileage(105),
	})
	if err != nil {
		t.Fatalf("picked up: unexpected error: %v", err)
	}
	if ride.PickupMiles == nil || *ride.PickupMiles != 105 {
		t.Errorf("expected pickup miles 105, got %v", ride.PickupMiles)
	}

	ride, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusCompleted, Mileage: mileage(120),
	})
	if err != nil {
		t.Fatalf("completed: unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusCompleted, ride.Status)
	}
	if ride.EndMiles == nil || *ride.EndMiles != 120 {
		t.Errorf("expected end miles 120, got %v", ride.EndMiles)
	}

	// Replaying COMPLETED with a lower reading violates monotonicity.
	_, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusCompleted, Mileage: mileage(100),
	})
	if !errors.Is(err, service.ErrInvalidMileage) {
		t.Errorf("expected ErrInvalidMileage, got %v", err)
	}
	if stored := rideRepo.GetRide("ride-1"); *stored.EndMiles != 120 {
		t.Errorf("failed transition must not write: end miles became %v", *stored.EndMiles)
	}
}

func TestProgress_SkippingStatusIsRejected(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusPickedUp, Mileage: mileage(50),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	var terr *service.TransitionError
	if !errors.As(err, &terr) {
		t.Fatal("expected a TransitionError with context")
	}
	if terr.RideID != "ride-1" || terr.Current != domain.RideStatusPending || terr.Attempted != domain.RideStatusPickedUp {
		t.Errorf("transition error context wrong: %+v", terr)
	}
}

func TestProgress_UnknownStatusIsRejected(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatus("CANCELLED"),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestProgress_StartWithoutDriverFails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusAssigned,
	})
	if !errors.Is(err, service.ErrMissingDriver) {
		t.Errorf("expected ErrMissingDriver, got %v", err)
	}
}

func TestProgress_MileageRequiredOnLegSteps(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted,
	})
	if !errors.Is(err, service.ErrInvalidMileage) {
		t.Errorf("expected ErrInvalidMileage for missing reading, got %v", err)
	}

	_, err = svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(-5),
	})
	if !errors.Is(err, service.ErrInvalidMileage) {
		t.Errorf("expected ErrInvalidMileage for negative reading, got %v", err)
	}
}

// ──────────────────────────────────────────────
// RIDE LIFECYCLE: RETURN LEG
// ──────────────────────────────────────────────

func TestProgress_ReturnPendingRequiresRoundTrip(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusCompleted,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)

	// No trip id: the ride terminates at COMPLETED.
	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusReturnPending,
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestProgress_ReturnLegLifecycle(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:           "ride-2",
		DriverID:     "driver-1",
		TripID:       "trip-1",
		IsReturnTrip: true,
		Status:       domain.RideStatusReturnPending,
		UpdatedAt:    time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	ride, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-2", Target: domain.RideStatusReturnStarted, Mileage: mileage(120),
	})
	if err != nil {
		t.Fatalf("return started: unexpected error: %v", err)
	}
	if ride.ReturnStartMiles == nil || *ride.ReturnStartMiles != 120 {
		t.Errorf("expected return start miles 120, got %v", ride.ReturnStartMiles)
	}

	ride, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-2", Target: domain.RideStatusReturnPickedUp, Mileage: mileage(125),
	})
	if err != nil {
		t.Fatalf("return picked up: unexpected error: %v", err)
	}

	ride, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-2", Target: domain.RideStatusReturnCompleted, Mileage: mileage(140),
	})
	if err != nil {
		t.Fatalf("return completed: unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusReturnCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusReturnCompleted, ride.Status)
	}
	if ride.ReturnEndTime.IsZero() {
		t.Error("expected return end time to be stamped")
	}
}

func TestProgress_ReturnLegCannotMoveBelowReturnPending(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:           "ride-2",
		DriverID:     "driver-1",
		TripID:       "trip-1",
		IsReturnTrip: true,
		Status:       domain.RideStatusReturnStarted,
		UpdatedAt:    time.Now(),
	})

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-2", Target: domain.RideStatusPending,
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

// ──────────────────────────────────────────────
// RIDE LIFECYCLE: ROLLBACK / CORRECTION
// ──────────────────────────────────────────────

func TestProgress_RollbackKeepsHistory(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	}); err != nil {
		t.Fatalf("started: unexpected error: %v", err)
	}
	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusPickedUp, Mileage: mileage(105),
	}); err != nil {
		t.Fatalf("picked up: unexpected error: %v", err)
	}

	// Roll back to STARTED: pickup history stays visible.
	ride, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted,
	})
	if err != nil {
		t.Fatalf("rollback: unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusStarted {
		t.Errorf("expected status %s, got %s", domain.RideStatusStarted, ride.Status)
	}
	if ride.PickupMiles == nil || *ride.PickupMiles != 105 {
		t.Errorf("rollback must not erase pickup miles, got %v", ride.PickupMiles)
	}
	if ride.PickupTime.IsZero() {
		t.Error("rollback must not erase pickup time")
	}
}

func TestProgress_ReapplyAfterRollbackRestamps(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	}); err != nil {
		t.Fatalf("started: unexpected error: %v", err)
	}
	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusPickedUp, Mileage: mileage(105),
	}); err != nil {
		t.Fatalf("picked up: unexpected error: %v", err)
	}

	firstPickup := rideRepo.GetRide("ride-1").PickupTime

	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted,
	}); err != nil {
		t.Fatalf("rollback: unexpected error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	ride, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusPickedUp, Mileage: mileage(106),
	})
	if err != nil {
		t.Fatalf("re-apply: unexpected error: %v", err)
	}
	if !ride.PickupTime.After(firstPickup) {
		t.Error("re-applied pickup must re-stamp its timestamp")
	}
	if *ride.PickupMiles != 106 {
		t.Errorf("expected corrected pickup miles 106, got %v", *ride.PickupMiles)
	}
}

func TestProgress_ReplaySameStatusKeepsTimestamp(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	}); err != nil {
		t.Fatalf("started: unexpected error: %v", err)
	}
	first := rideRepo.GetRide("ride-1").StartTime

	time.Sleep(5 * time.Millisecond)

	ride, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	})
	if err != nil {
		t.Fatalf("replay: unexpected error: %v", err)
	}
	if !ride.StartTime.Equal(first) {
		t.Error("replaying the same transition must not overwrite the timestamp")
	}
}

func TestProgress_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})
	rideRepo.UpdateError = errors.New("connection reset")

	svc := newProgressService(rideRepo)

	_, err := svc.ApplyTransition(context.Background(), service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
	})
	if err == nil || err.Error() != "connection reset" {
		t.Errorf("store error must surface unchanged, got %v", err)
	}
}

// ──────────────────────────────────────────────
// CONCURRENCY
// ──────────────────────────────────────────────

func TestProgress_StaleSnapshotConflicts(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newProgressService(rideRepo)
	ctx := context.Background()

	// Both actors read the same snapshot.
	snapshot, err := rideRepo.GetByID(ctx, "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First actor wins.
	if _, err := svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(100),
		KnownUpdatedAt: snapshot.UpdatedAt,
	}); err != nil {
		t.Fatalf("first transition: unexpected error: %v", err)
	}

	// Second actor still holds the old snapshot and must get a conflict.
	_, err = svc.ApplyTransition(ctx, service.TransitionRequest{
		RideID: "ride-1", Target: domain.RideStatusStarted, Mileage: mileage(101),
		KnownUpdatedAt: snapshot.UpdatedAt,
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	if stored := rideRepo.GetRide("ride-1"); *stored.StartMiles != 100 {
		t.Errorf("conflicting write must not land: start miles became %v", *stored.StartMiles)
	}
}
