package domain

// FindLinkedRide returns the ride paired with the given one through a shared
// TripID and the opposite IsReturnTrip flag, or nil when no pair exists. With
// malformed data (more than two rides on a trip id) the first match wins;
// AuditTripGroups exists to surface those groups.
func FindLinkedRide(ride *Ride, rides []*Ride) *Ride {
	if ride == nil || ride.TripID == "" {
		return nil
	}
	for _, other := range rides {
		if other.ID == ride.ID {
			continue
		}
		if other.TripID == ride.TripID && other.IsReturnTrip != ride.IsReturnTrip {
			return other
		}
	}
	return nil
}

// TripGroupIssue describes a trip id whose ride group is malformed: a
// well-formed trip has exactly one outbound and one return ride.
type TripGroupIssue struct {
	TripID   string
	Size     int
	Outbound int
	Return   int
}

// AuditTripGroups scans a ride set and reports every trip id that does not
// group into exactly one outbound plus one return ride. Singleton outbound
// rides are fine (a round trip whose return has not been scheduled yet);
// everything else is reported.
func AuditTripGroups(rides []*Ride) []TripGroupIssue {
	type counts struct {
		outbound int
		ret      int
	}
	groups := make(map[string]*counts)
	var order []string

	for _, ride := range rides {
		if ride.TripID == "" {
			continue
		}
		g, ok := groups[ride.TripID]
		if !ok {
			g = &counts{}
			groups[ride.TripID] = g
			order = append(order, ride.TripID)
		}
		if ride.IsReturnTrip {
			g.ret++
		} else {
			g.outbound++
		}
	}

	var issues []TripGroupIssue
	for _, tripID := range order {
		g := groups[tripID]
		if g.outbound == 1 && g.ret == 1 {
			continue
		}
		if g.outbound == 1 && g.ret == 0 {
			continue // return leg not scheduled yet
		}
		issues = append(issues, TripGroupIssue{
			TripID:   tripID,
			Size:     g.outbound + g.ret,
			Outbound: g.outbound,
			Return:   g.ret,
		})
	}
	return issues
}
