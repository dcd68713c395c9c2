package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/service"
)

// ProgressHandler handles HTTP requests for ride lifecycle progress.
type ProgressHandler struct {
	progressService *service.ProgressService
	mileageService  *service.MileageService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService, mileageService *service.MileageService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		mileageService:  mileageService,
	}
}

// TransitionRequest is the HTTP request body for a status transition. The
// same endpoint serves forward progress and backward corrections; direction
// is derived from the target status.
type TransitionRequest struct {
	Target  string   `json:"target"`
	Mileage *float64 `json:"mileage,omitempty"`

	// KnownUpdatedAt lets the client pass the updated_at it last saw, so a
	// transition based on a stale screen fails with 409 instead of
	// clobbering a concurrent change.
	KnownUpdatedAt time.Time `json:"known_updated_at,omitempty"`
}

// MileageEdit is a single staged odometer correction.
type MileageEdit struct {
	Step  string  `json:"step"`
	Value float64 `json:"value"`
}

// EditMileageRequest is the HTTP request body for odometer corrections. All
// edits are staged and committed in one save.
type EditMileageRequest struct {
	Edits []MileageEdit `json:"edits"`
}

// ApplyTransition handles POST /v1/rides/:id/transition
func (h *ProgressHandler) ApplyTransition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	target, err := domain.ParseStatus(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ride, err := h.progressService.ApplyTransition(c.Request.Context(), service.TransitionRequest{
		RideID:         c.Param("id"),
		Target:         target,
		Mileage:        req.Mileage,
		KnownUpdatedAt: req.KnownUpdatedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// EditMileage handles POST /v1/rides/:id/mileage
func (h *ProgressHandler) EditMileage(c *gin.Context) {
	var req EditMileageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Edits) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no edits provided"})
		return
	}

	correction, err := h.mileageService.NewCorrection(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, edit := range req.Edits {
		if err := correction.Stage(domain.LegStep(edit.Step), edit.Value); err != nil {
			respondError(c, err)
			return
		}
	}

	ride, err := h.mileageService.Save(c.Request.Context(), correction)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
