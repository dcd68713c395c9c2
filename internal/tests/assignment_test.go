package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER ASSIGNMENT
// ──────────────────────────────────────────────

func newAssignmentService(rideRepo *MockRideRepository, driverRepo *MockDriverRepository) *service.AssignmentService {
	return service.NewAssignmentService(rideRepo, driverRepo, nil, service.NewRideGuard(nil), nil)
}

func TestAssignDriver_PendingRide(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Dana"})

	svc := newAssignmentService(rideRepo, driverRepo)

	ride, err := svc.AssignDriver(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusAssigned {
		t.Errorf("expected status %s, got %s", domain.RideStatusAssigned, ride.Status)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %q", ride.DriverID)
	}
}

func TestAssignDriver_UnknownDriverFails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})

	svc := newAssignmentService(rideRepo, driverRepo)

	_, err := svc.AssignDriver(context.Background(), "ride-1", "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if stored := rideRepo.GetRide("ride-1"); stored.DriverID != "" {
		t.Errorf("failed assignment must not write, got driver %q", stored.DriverID)
	}
}

func TestAssignDriver_NonPendingRideFails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusStarted,
		UpdatedAt: time.Now(),
	})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-2", Name: "Eli"})

	svc := newAssignmentService(rideRepo, driverRepo)

	_, err := svc.AssignDriver(context.Background(), "ride-1", "driver-2")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssignDriver_ReturnLegIsNeverAssignedDirectly(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:           "ride-2",
		TripID:       "trip-1",
		IsReturnTrip: true,
		Status:       domain.RideStatusReturnPending,
		UpdatedAt:    time.Now(),
	})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Dana"})

	svc := newAssignmentService(rideRepo, driverRepo)

	_, err := svc.AssignDriver(context.Background(), "ride-2", "driver-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssignDriver_PropagatesToReturnLeg(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		TripID:    "trip-1",
		Status:    domain.RideStatusPending,
		UpdatedAt: time.Now(),
	})
	rideRepo.AddRide(&domain.Ride{
		ID:           "ride-2",
		TripID:       "trip-1",
		IsReturnTrip: true,
		Status:       domain.RideStatusReturnPending,
		UpdatedAt:    time.Now(),
	})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Dana"})

	svc := newAssignmentService(rideRepo, driverRepo)

	if _, err := svc.AssignDriver(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ret := rideRepo.GetRide("ride-2"); ret.DriverID != "driver-1" {
		t.Errorf("return leg should inherit the outbound driver, got %q", ret.DriverID)
	}
}

func TestUnassignDriver_AssignedRide(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusAssigned,
		UpdatedAt: time.Now(),
	})

	svc := newAssignmentService(rideRepo, driverRepo)

	ride, err := svc.AssignDriver(context.Background(), "ride-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected status %s, got %s", domain.RideStatusPending, ride.Status)
	}
	if ride.DriverID != "" {
		t.Errorf("expected no driver, got %q", ride.DriverID)
	}
}

func TestUnassignDriver_StartedRideKeepsDriver(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{
		ID:        "ride-1",
		DriverID:  "driver-1",
		Status:    domain.RideStatusStarted,
		UpdatedAt: time.Now(),
	})

	svc := newAssignmentService(rideRepo, driverRepo)

	_, err := svc.AssignDriver(context.Background(), "ride-1", "")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if stored := rideRepo.GetRide("ride-1"); stored.DriverID != "driver-1" {
		t.Errorf("in-progress ride must keep its driver, got %q", stored.DriverID)
	}
}

func TestListUnassigned(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", Status: domain.RideStatusPending, UpdatedAt: time.Now()})
	rideRepo.AddRide(&domain.Ride{ID: "ride-2", DriverID: "driver-1", Status: domain.RideStatusAssigned, UpdatedAt: time.Now()})
	rideRepo.AddRide(&domain.Ride{ID: "ride-3", Status: domain.RideStatusPending, UpdatedAt: time.Now()})

	svc := newAssignmentService(rideRepo, driverRepo)

	rides, err := svc.ListUnassigned(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 2 {
		t.Errorf("expected 2 unassigned rides, got %d", len(rides))
	}
}

func TestSetDriverDuty(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Dana", Status: domain.DriverStatusOffDuty})

	svc := newAssignmentService(rideRepo, driverRepo)

	if err := svc.SetDriverDuty(context.Background(), "driver-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	driver, err := driverRepo.GetByID(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusOnDuty {
		t.Errorf("expected %s, got %s", domain.DriverStatusOnDuty, driver.Status)
	}
}
