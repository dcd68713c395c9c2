package domain

import (
	"testing"
	"time"
)

func TestCategorize_PartitionsByStatus(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	nextWeek := ref.Add(7 * 24 * time.Hour)

	rides := []*Ride{
		{ID: "r1", Status: RideStatusPending, ScheduledPickupTime: nextWeek},
		{ID: "r2", Status: RideStatusAssigned, ScheduledPickupTime: nextWeek},
		{ID: "r3", Status: RideStatusStarted, ScheduledPickupTime: nextWeek},
		{ID: "r4", Status: RideStatusPickedUp, ScheduledPickupTime: nextWeek},
		{ID: "r5", Status: RideStatusCompleted, ScheduledPickupTime: nextWeek},
		{ID: "r6", Status: RideStatusReturnPending, ScheduledPickupTime: nextWeek},
		{ID: "r7", Status: RideStatusReturnStarted, ScheduledPickupTime: nextWeek},
		{ID: "r8", Status: RideStatusReturnPickedUp, ScheduledPickupTime: nextWeek},
		{ID: "r9", Status: RideStatusReturnCompleted, ScheduledPickupTime: nextWeek},
	}

	c := Categorize(rides, ref)

	if got := len(c.Active); got != 4 {
		t.Errorf("expected 4 active, got %d", got)
	}
	if got := len(c.Upcoming); got != 3 {
		t.Errorf("expected 3 upcoming, got %d", got)
	}
	if got := len(c.Completed); got != 2 {
		t.Errorf("expected 2 completed, got %d", got)
	}
	if got := len(c.Uncategorized); got != 0 {
		t.Errorf("expected nothing uncategorized, got %d", got)
	}
	if got := len(c.Todays); got != 0 {
		t.Errorf("nothing scheduled today, got %d", got)
	}
}

func TestCategorize_UnknownStatusIsVisible(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	rides := []*Ride{
		{ID: "r1", Status: RideStatus("CANCELED"), ScheduledPickupTime: today},
	}

	c := Categorize(rides, ref)

	if len(c.Uncategorized) != 1 || c.Uncategorized[0].ID != "r1" {
		t.Errorf("unknown status must land in Uncategorized, got %+v", c.Uncategorized)
	}
	// Still visible on the day view.
	if len(c.Todays) != 1 {
		t.Errorf("uncategorized ride scheduled today must appear in Todays, got %d", len(c.Todays))
	}
}

func TestCategorize_TodaysUsesRefCalendarDay(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	rides := []*Ride{
		{ID: "same-day", Status: RideStatusPending, ScheduledPickupTime: time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)},
		{ID: "next-day", Status: RideStatusPending, ScheduledPickupTime: time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)},
		// 23:30 UTC on the 10th is already the 11th in UTC+2, but ref is UTC.
		{ID: "other-zone", Status: RideStatusPending, ScheduledPickupTime: time.Date(2026, 3, 11, 1, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))},
	}

	c := Categorize(rides, ref)

	ids := make(map[string]bool, len(c.Todays))
	for _, r := range c.Todays {
		ids[r.ID] = true
	}
	if !ids["same-day"] {
		t.Error("ride on ref's calendar day belongs in Todays")
	}
	if ids["next-day"] {
		t.Error("next-day ride must not appear in Todays")
	}
	if !ids["other-zone"] {
		t.Error("same-day check must convert into ref's location first")
	}
}

func TestCategorize_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ride := &Ride{ID: "r1", Status: RideStatusPending, ScheduledPickupTime: ref}
	rides := []*Ride{ride}

	first := Categorize(rides, ref)
	second := Categorize(rides, ref)

	if ride.Status != RideStatusPending {
		t.Error("input ride mutated")
	}
	if len(first.Upcoming) != len(second.Upcoming) || len(first.Todays) != len(second.Todays) {
		t.Error("same input must yield the same buckets")
	}
}
