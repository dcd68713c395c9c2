package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	assignmentService *service.AssignmentService
	driverRepo        repository.DriverRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(assignmentService *service.AssignmentService, driverRepo repository.DriverRepository) *DriverHandler {
	return &DriverHandler{
		assignmentService: assignmentService,
		driverRepo:        driverRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SetDutyRequest is the HTTP request body for flipping a driver's duty status.
type SetDutyRequest struct {
	OnDuty bool `json:"on_duty"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

func toDriverResponses(drivers []*domain.Driver) []DriverResponse {
	out := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, DriverResponse{
			ID:     d.ID,
			Name:   d.Name,
			Phone:  d.Phone,
			Status: string(d.Status),
		})
	}
	return out
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	driver := &domain.Driver{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Phone:  req.Phone,
		Status: domain.DriverStatusOffDuty,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, DriverResponse{
		ID:     driver.ID,
		Name:   driver.Name,
		Phone:  driver.Phone,
		Status: string(driver.Status),
	})
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponses(drivers))
}

// GetOnDuty handles GET /v1/drivers/on-duty
func (h *DriverHandler) GetOnDuty(c *gin.Context) {
	drivers, err := h.assignmentService.OnDutyDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponses(drivers))
}

// SetDuty handles POST /v1/drivers/:id/duty
func (h *DriverHandler) SetDuty(c *gin.Context) {
	var req SetDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.assignmentService.SetDriverDuty(c.Request.Context(), c.Param("id"), req.OnDuty); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"driver_id": c.Param("id"), "on_duty": req.OnDuty})
}

// GetRides handles GET /v1/drivers/:id/rides
func (h *DriverHandler) GetRides(c *gin.Context) {
	rides, err := h.assignmentService.ListForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}
