package domain

import "time"

// Categories holds the display buckets every dashboard and portal derives from
// a ride list. Active, Upcoming and Completed partition the input by status;
// Todays additionally holds every ride scheduled on the reference day. Rides
// whose status is not a known enum value land in Uncategorized so corrupt data
// is visible to operators instead of vanishing from every view.
type Categories struct {
	Active        []*Ride
	Upcoming      []*Ride
	Completed     []*Ride
	Todays        []*Ride
	Uncategorized []*Ride
}

// Categorize buckets rides for display. It is pure: the input is never
// mutated and the same input always yields the same buckets. Same-day checks
// use the calendar day of ref in ref's location.
func Categorize(rides []*Ride, ref time.Time) Categories {
	var c Categories

	refYear, refMonth, refDay := ref.Date()

	for _, ride := range rides {
		switch ride.Status {
		case RideStatusStarted, RideStatusPickedUp, RideStatusReturnStarted, RideStatusReturnPickedUp:
			c.Active = append(c.Active, ride)
		case RideStatusPending, RideStatusAssigned, RideStatusReturnPending:
			c.Upcoming = append(c.Upcoming, ride)
		case RideStatusCompleted, RideStatusReturnCompleted:
			c.Completed = append(c.Completed, ride)
		default:
			c.Uncategorized = append(c.Uncategorized, ride)
		}

		// Todays is independent of status, so even an uncategorized ride
		// scheduled today still shows on the day view.
		y, m, d := ride.ScheduledPickupTime.In(ref.Location()).Date()
		if y == refYear && m == refMonth && d == refDay {
			c.Todays = append(c.Todays, ride)
		}
	}

	return c
}
