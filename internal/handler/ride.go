package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService       *service.RideService
	tripService       *service.TripService
	assignmentService *service.AssignmentService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	rideService *service.RideService,
	tripService *service.TripService,
	assignmentService *service.AssignmentService,
) *RideHandler {
	return &RideHandler{
		rideService:       rideService,
		tripService:       tripService,
		assignmentService: assignmentService,
	}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	MemberID            string    `json:"member_id"`
	PickupAddress       string    `json:"pickup_address"`
	DropoffAddress      string    `json:"dropoff_address"`
	ScheduledPickupTime time.Time `json:"scheduled_pickup_time"`
	Notes               string    `json:"notes,omitempty"`
	PaymentMethod       string    `json:"payment_method,omitempty"` // CASH, CARD, WALLET, UPI
	Recurring           bool      `json:"recurring,omitempty"`
	RoundTrip           bool      `json:"round_trip,omitempty"`
}

// AssignDriverRequest is the HTTP request body for assigning a driver. An
// empty driver_id unassigns.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// ScheduleReturnRequest is the HTTP request body for scheduling a return leg.
type ScheduleReturnRequest struct {
	PickupTime time.Time `json:"pickup_time"`
}

// UpdateScheduleRequest is the HTTP request body for moving a pickup time.
type UpdateScheduleRequest struct {
	PickupTime time.Time `json:"pickup_time"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                  string    `json:"id"`
	MemberID            string    `json:"member_id"`
	DriverID            string    `json:"driver_id,omitempty"`
	TripID              string    `json:"trip_id,omitempty"`
	IsReturnTrip        bool      `json:"is_return_trip"`
	PickupAddress       string    `json:"pickup_address"`
	DropoffAddress      string    `json:"dropoff_address"`
	ScheduledPickupTime time.Time `json:"scheduled_pickup_time"`
	Status              string    `json:"status"`
	Notes               string    `json:"notes,omitempty"`
	PaymentMethod       string    `json:"payment_method"`
	Recurring           bool      `json:"recurring"`

	StartMiles        *float64 `json:"start_miles,omitempty"`
	PickupMiles       *float64 `json:"pickup_miles,omitempty"`
	EndMiles          *float64 `json:"end_miles,omitempty"`
	ReturnStartMiles  *float64 `json:"return_start_miles,omitempty"`
	ReturnPickupMiles *float64 `json:"return_pickup_miles,omitempty"`
	ReturnEndMiles    *float64 `json:"return_end_miles,omitempty"`

	StartTime        *time.Time `json:"start_time,omitempty"`
	PickupTime       *time.Time `json:"pickup_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	ReturnStartTime  *time.Time `json:"return_start_time,omitempty"`
	ReturnPickupTime *time.Time `json:"return_pickup_time,omitempty"`
	ReturnEndTime    *time.Time `json:"return_end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetRideResponse pairs a ride with its linked return or outbound leg.
type GetRideResponse struct {
	Ride       RideResponse  `json:"ride"`
	LinkedRide *RideResponse `json:"linked_ride,omitempty"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:                  r.ID,
		MemberID:            r.MemberID,
		DriverID:            r.DriverID,
		TripID:              r.TripID,
		IsReturnTrip:        r.IsReturnTrip,
		PickupAddress:       r.PickupAddress,
		DropoffAddress:      r.DropoffAddress,
		ScheduledPickupTime: r.ScheduledPickupTime,
		Status:              string(r.Status),
		Notes:               r.Notes,
		PaymentMethod:       string(r.PaymentMethod),
		Recurring:           r.Recurring,
		StartMiles:          r.StartMiles,
		PickupMiles:         r.PickupMiles,
		EndMiles:            r.EndMiles,
		ReturnStartMiles:    r.ReturnStartMiles,
		ReturnPickupMiles:   r.ReturnPickupMiles,
		ReturnEndMiles:      r.ReturnEndMiles,
		StartTime:           timePtr(r.StartTime),
		PickupTime:          timePtr(r.PickupTime),
		EndTime:             timePtr(r.EndTime),
		ReturnStartTime:     timePtr(r.ReturnStartTime),
		ReturnPickupTime:    timePtr(r.ReturnPickupTime),
		ReturnEndTime:       timePtr(r.ReturnEndTime),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResponse(r))
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideRequest{
		MemberID:            req.MemberID,
		PickupAddress:       req.PickupAddress,
		DropoffAddress:      req.DropoffAddress,
		ScheduledPickupTime: req.ScheduledPickupTime,
		Notes:               req.Notes,
		PaymentMethod:       domain.PaymentMethod(req.PaymentMethod),
		Recurring:           req.Recurring,
		RoundTrip:           req.RoundTrip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	filter := repository.RideFilter{
		MemberID:   c.Query("member_id"),
		DriverID:   c.Query("driver_id"),
		Unassigned: c.Query("unassigned") == "true",
	}
	if status := c.Query("status"); status != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		filter.Status = parsed
	}

	rides, err := h.rideService.ListRides(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID := c.Param("id")

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := GetRideResponse{Ride: toRideResponse(ride)}
	if linked, err := h.tripService.LinkedRide(c.Request.Context(), rideID); err == nil && linked != nil {
		lr := toRideResponse(linked)
		resp.LinkedRide = &lr
	}

	respondJSON(c, http.StatusOK, resp)
}

// GetStatus handles GET /v1/rides/:id/status
func (h *RideHandler) GetStatus(c *gin.Context) {
	summary, err := h.rideService.GetRideSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, summary)
}

// AssignDriver handles POST /v1/rides/:id/assign
func (h *RideHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.assignmentService.AssignDriver(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ScheduleReturn handles POST /v1/rides/:id/return
func (h *RideHandler) ScheduleReturn(c *gin.Context) {
	var req ScheduleReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.tripService.ScheduleReturn(c.Request.Context(), service.ScheduleReturnRequest{
		RideID:     c.Param("id"),
		PickupTime: req.PickupTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// UpdateSchedule handles PATCH /v1/rides/:id/schedule
func (h *RideHandler) UpdateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.UpdateSchedule(c.Request.Context(), c.Param("id"), req.PickupTime)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
