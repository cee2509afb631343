package memberships

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles membership requests
type Handler struct {
	db      *gorm.DB
	service *Service
}

// NewHandler creates a new memberships handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, service: NewService(db)}
}

// DecideRequest represents a single approve/reject request
type DecideRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason"`
}

// BulkDecideRequest represents a bulk approve/reject request
type BulkDecideRequest struct {
	MembershipIDs []uint `json:"membership_ids" binding:"required,min=1"`
	Action        string `json:"action" binding:"required,oneof=approve reject"`
	Reason        string `json:"reason"`
}

// MembershipResponse represents a membership in API responses
type MembershipResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	ClubID    uint   `json:"club_id"`
	Status    string `json:"status"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at,omitempty"`
	CreatedAt string `json:"created_at"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	ClubName  string `json:"club_name,omitempty"`
}

// ListResponse is the admin listing with aggregate counts by status
type ListResponse struct {
	Memberships []MembershipResponse `json:"memberships"`
	Counts      map[string]int64     `json:"counts"`
}

func toResponse(m models.Membership) MembershipResponse {
	resp := MembershipResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		ClubID:    m.ClubID,
		Status:    string(m.Status),
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UserName:  m.User.Name,
		UserEmail: m.User.Email,
		ClubName:  m.Club.Name,
	}
	if m.JoinedAt != nil {
		resp.JoinedAt = m.JoinedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if m.User.StudentID != nil {
		resp.StudentID = *m.User.StudentID
	}
	return resp
}

func actorFrom(c *gin.Context) Actor {
	userID, _ := auth.GetUserID(c)
	role, _ := auth.GetRole(c)
	return Actor{UserID: userID, Role: role}
}

// Apply creates a pending membership for the current user
// @Summary Apply to a club
// @Description Submit a membership application for the authenticated user
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Success 201 {object} MembershipResponse
// @Failure 404 {object} map[string]string "Club not found"
// @Failure 409 {object} map[string]string "Already applied"
// @Security BearerAuth
// @Router /clubs/{id}/apply [post]
func (h *Handler) Apply(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	membership, err := h.service.Apply(userID, uint(clubID))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		case errors.Is(err, ErrDuplicateMembership):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have a membership record for this club"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply"})
		}
		return
	}

	c.JSON(http.StatusCreated, toResponse(*membership))
}

// Leave removes the current user's membership of a club
// @Summary Leave a club
// @Description Delete the authenticated user's membership record for a club
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} map[string]string "Membership removed"
// @Failure 404 {object} map[string]string "Membership not found"
// @Security BearerAuth
// @Router /clubs/{id}/membership [delete]
func (h *Handler) Leave(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	if err := h.service.Leave(userID, uint(clubID)); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave club"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left club"})
}

// Decide approves or rejects a single pending membership
// @Summary Approve or reject a membership
// @Description Transition a pending membership (club leader of that club, or admin)
// @Tags memberships
// @Accept json
// @Produce json
// @Param id path int true "Membership ID"
// @Param request body DecideRequest true "Decision"
// @Success 200 {object} MembershipResponse
// @Failure 403 {object} map[string]string "Not your club"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 409 {object} map[string]string "Membership is not pending"
// @Security BearerAuth
// @Router /memberships/{id} [put]
func (h *Handler) Decide(c *gin.Context) {
	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.service.Decide(actorFrom(c), uint(membershipID), req.Action, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not lead this club"})
		case errors.Is(err, ErrInvalidAction):
			c.JSON(http.StatusConflict, gin.H{"error": "Membership is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update membership"})
		}
		return
	}

	c.JSON(http.StatusOK, toResponse(*membership))
}

// BulkDecide approves or rejects a set of pending memberships, all or nothing
// @Summary Bulk approve or reject memberships
// @Description Apply one decision to a set of pending memberships. Rejected entirely if any row is not pending or not led by the caller.
// @Tags memberships
// @Accept json
// @Produce json
// @Param request body BulkDecideRequest true "Bulk decision"
// @Success 200 {object} map[string]interface{} "processed count and per-row summary"
// @Failure 409 {object} map[string]string "Batch rejected"
// @Security BearerAuth
// @Router /memberships/bulk [post]
func (h *Handler) BulkDecide(c *gin.Context) {
	var req BulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.service.BulkDecide(actorFrom(c), req.MembershipIDs, req.Action, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Club leader or admin access required"})
		case errors.Is(err, ErrPartialBatch):
			c.JSON(http.StatusConflict, gin.H{"error": "One or more memberships are not pending or not led by you; no changes applied"})
		case errors.Is(err, ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process batch"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": len(results), "results": results})
}

// Remove deletes a membership row (admin only)
// @Summary Remove a membership
// @Description Delete a membership record entirely
// @Tags memberships
// @Produce json
// @Param id path int true "Membership ID"
// @Success 200 {object} map[string]string "Membership removed"
// @Failure 404 {object} map[string]string "Membership not found"
// @Security BearerAuth
// @Router /memberships/{id} [delete]
func (h *Handler) Remove(c *gin.Context) {
	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	if err := h.service.Remove(uint(membershipID)); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove membership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Membership removed"})
}

// List returns all memberships with filters and per-status counts (admin only).
// Pending applications surface first so triage views see them at the top.
// @Summary List memberships
// @Description List memberships with optional status, club and free-text filters
// @Tags memberships
// @Produce json
// @Param status query string false "Filter by status"
// @Param club_id query int false "Filter by club"
// @Param q query string false "Search over name, email and student ID"
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /memberships [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("User").Preload("Club").
		Joins("JOIN users ON users.id = memberships.user_id")

	if status := c.Query("status"); status != "" {
		query = query.Where("memberships.status = ?", status)
	}
	if clubID := c.Query("club_id"); clubID != "" {
		query = query.Where("memberships.club_id = ?", clubID)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("users.name LIKE ? OR users.email LIKE ? OR users.student_id LIKE ?", like, like, like)
	}

	var rows []models.Membership
	err := query.Order("CASE memberships.status WHEN 'pending' THEN 0 WHEN 'accepted' THEN 1 ELSE 2 END").
		Order("memberships.created_at DESC").
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	counts := map[string]int64{}
	for _, status := range []models.MembershipStatus{models.MembershipPending, models.MembershipAccepted, models.MembershipRejected} {
		var n int64
		h.db.Model(&models.Membership{}).Where("status = ?", status).Count(&n)
		counts[string(status)] = n
	}

	responses := make([]MembershipResponse, len(rows))
	for i, m := range rows {
		responses[i] = toResponse(m)
	}

	c.JSON(http.StatusOK, ListResponse{Memberships: responses, Counts: counts})
}

// ListPending returns pending memberships scoped to the clubs the caller
// leads; admins see all pending memberships.
// @Summary List pending memberships
// @Description Pending applications for clubs the caller leads (all clubs for admins)
// @Tags memberships
// @Produce json
// @Success 200 {array} MembershipResponse
// @Security BearerAuth
// @Router /memberships/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	actor := actorFrom(c)

	query := h.db.Preload("User").Preload("Club").
		Where("status = ?", models.MembershipPending)
	if actor.Role != models.RoleAdmin {
		var ledClubIDs []uint
		if err := h.db.Model(&models.Club{}).Where("leader_id = ?", actor.UserID).
			Pluck("id", &ledClubIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clubs"})
			return
		}
		query = query.Where("club_id IN ?", ledClubIDs)
	}

	var rows []models.Membership
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	responses := make([]MembershipResponse, len(rows))
	for i, m := range rows {
		responses[i] = toResponse(m)
	}

	c.JSON(http.StatusOK, responses)
}

// RegisterClubRoutes registers the self-service apply/leave routes
func (h *Handler) RegisterClubRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/apply", h.Apply)
	rg.DELETE("/:id/membership", h.Leave)
}

// RegisterRoutes registers membership management routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", auth.RequireAdmin(), h.List)
	rg.GET("/export", auth.RequireAdmin(), h.Export)
	rg.GET("/pending", auth.RequireLeaderOrAdmin(), h.ListPending)
	rg.POST("/bulk", auth.RequireLeaderOrAdmin(), h.BulkDecide)
	rg.PUT("/:id", auth.RequireLeaderOrAdmin(), h.Decide)
	rg.DELETE("/:id", auth.RequireAdmin(), h.Remove)
}
