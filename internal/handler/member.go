package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// MemberHandler handles HTTP requests for members.
type MemberHandler struct {
	memberRepo repository.MemberRepository
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberRepo repository.MemberRepository) *MemberHandler {
	return &MemberHandler{memberRepo: memberRepo}
}

// RegisterMemberRequest is the HTTP request body for registering a member.
type RegisterMemberRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// MemberResponse is the HTTP representation of a member.
type MemberResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Register handles POST /v1/members/register
func (h *MemberHandler) Register(c *gin.Context) {
	var req RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	member := &domain.Member{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now(),
	}

	if err := h.memberRepo.Create(c.Request.Context(), member); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, MemberResponse{
		ID:      member.ID,
		Name:    member.Name,
		Phone:   member.Phone,
		Address: member.Address,
	})
}

// GetAll handles GET /v1/members
func (h *MemberHandler) GetAll(c *gin.Context) {
	members, err := h.memberRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			ID:      m.ID,
			Name:    m.Name,
			Phone:   m.Phone,
			Address: m.Address,
		})
	}

	respondJSON(c, http.StatusOK, out)
}
