package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/service"
)

// DashboardHandler handles HTTP requests for the categorized ride views.
type DashboardHandler struct {
	rideService *service.RideService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(rideService *service.RideService) *DashboardHandler {
	return &DashboardHandler{rideService: rideService}
}

// TripIssueResponse reports a malformed trip correlation group.
type TripIssueResponse struct {
	TripID   string `json:"trip_id"`
	Size     int    `json:"size"`
	Outbound int    `json:"outbound"`
	Return   int    `json:"return"`
}

// DashboardResponse is the HTTP representation of the categorized ride set.
type DashboardResponse struct {
	Active          []RideResponse      `json:"active"`
	Upcoming        []RideResponse      `json:"upcoming"`
	Completed       []RideResponse      `json:"completed"`
	Todays          []RideResponse      `json:"todays"`
	Uncategorized   []RideResponse      `json:"uncategorized"`
	UnassignedCount int                 `json:"unassigned_count"`
	TripIssues      []TripIssueResponse `json:"trip_issues,omitempty"`
}

// Get handles GET /v1/dashboard. An optional date query (YYYY-MM-DD) moves
// the "todays" reference day; it defaults to now.
func (h *DashboardHandler) Get(c *gin.Context) {
	ref := time.Now()
	if date := c.Query("date"); date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
			return
		}
		ref = parsed
	}

	dashboard, err := h.rideService.BuildDashboard(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDashboardResponse(dashboard))
}

func toDashboardResponse(d *service.Dashboard) DashboardResponse {
	issues := make([]TripIssueResponse, 0, len(d.TripIssues))
	for _, issue := range d.TripIssues {
		issues = append(issues, TripIssueResponse(issue))
	}

	return DashboardResponse{
		Active:          toRideResponses(d.Categories.Active),
		Upcoming:        toRideResponses(d.Categories.Upcoming),
		Completed:       toRideResponses(d.Categories.Completed),
		Todays:          toRideResponses(d.Categories.Todays),
		Uncategorized:   toRideResponses(d.Categories.Uncategorized),
		UnassignedCount: d.UnassignedCount,
		TripIssues:      issues,
	}
}
