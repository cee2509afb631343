package clubs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles club-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new clubs handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateClubRequest represents the request to create a club
type CreateClubRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Status      string   `json:"status" binding:"omitempty,oneof=pending active inactive suspended"`
	Activities  []string `json:"activities"`
}

// UpdateClubRequest represents the request to update a club
type UpdateClubRequest struct {
	Name        string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	Department  *string  `json:"department"`
	Status      string   `json:"status" binding:"omitempty,oneof=pending active inactive suspended"`
	Activities  []string `json:"activities"`
}

// ClubResponse represents a club in API responses
type ClubResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Department  string   `json:"department,omitempty"`
	Status      string   `json:"status"`
	LeaderID    *uint    `json:"leader_id,omitempty"`
	LeaderName  string   `json:"leader_name,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	MemberCount int      `json:"member_count"`
	CreatedAt   string   `json:"created_at"`
}

func (h *Handler) toResponse(club models.Club) ClubResponse {
	var memberCount int64
	h.db.Model(&models.Membership{}).
		Where("club_id = ? AND status = ?", club.ID, models.MembershipAccepted).
		Count(&memberCount)

	resp := ClubResponse{
		ID:          club.ID,
		Name:        club.Name,
		Description: club.Description,
		Department:  club.Department,
		Status:      string(club.Status),
		LeaderID:    club.LeaderID,
		MemberCount: int(memberCount),
		CreatedAt:   club.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if club.Leader != nil {
		resp.LeaderName = club.Leader.Name
	}
	if club.Activities != "" {
		json.Unmarshal([]byte(club.Activities), &resp.Activities)
	}
	return resp
}

// List returns all clubs, optionally filtered by status or department
// @Summary List clubs
// @Description Get all clubs with member counts
// @Tags clubs
// @Produce json
// @Param status query string false "Filter by status"
// @Param department query string false "Filter by department"
// @Success 200 {array} ClubResponse
// @Security BearerAuth
// @Router /clubs [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("Leader").Order("name")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}

	var clubs []models.Club
	if err := query.Find(&clubs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clubs"})
		return
	}

	responses := make([]ClubResponse, len(clubs))
	for i, club := range clubs {
		responses[i] = h.toResponse(club)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns a specific club
// @Summary Get a club
// @Description Get details of a specific club
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} ClubResponse
// @Failure 404 {object} map[string]string "Club not found"
// @Security BearerAuth
// @Router /clubs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var club models.Club
	if err := h.db.Preload("Leader").First(&club, clubID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(club))
}

// Create creates a new club (admin only)
// @Summary Create a club
// @Description Create a new club
// @Tags clubs
// @Accept json
// @Produce json
// @Param request body CreateClubRequest true "Club details"
// @Success 201 {object} ClubResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Club name taken"
// @Security BearerAuth
// @Router /clubs [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	club := models.Club{
		Name:        req.Name,
		Description: req.Description,
		Department:  req.Department,
		Status:      models.ClubStatusPending,
	}
	if req.Status != "" {
		club.Status = models.ClubStatus(req.Status)
	}
	if len(req.Activities) > 0 {
		data, _ := json.Marshal(req.Activities)
		club.Activities = string(data)
	}

	if err := h.db.Create(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A club with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create club"})
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(club))
}

// Update updates a club (admin or that club's leader)
// @Summary Update a club
// @Description Update club details
// @Tags clubs
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body UpdateClubRequest true "Updated club details"
// @Success 200 {object} ClubResponse
// @Failure 403 {object} map[string]string "Not your club"
// @Failure 404 {object} map[string]string "Club not found"
// @Security BearerAuth
// @Router /clubs/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	role, _ := auth.GetRole(c)
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var club models.Club
	if err := h.db.First(&club, clubID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		return
	}

	isLeader := club.LeaderID != nil && *club.LeaderID == userID
	if role != models.RoleAdmin && !isLeader {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin or club leader access required"})
		return
	}

	var req UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		club.Name = req.Name
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.Department != nil {
		club.Department = *req.Department
	}
	// Only admins may change a club's status
	if req.Status != "" && role == models.RoleAdmin {
		club.Status = models.ClubStatus(req.Status)
	}
	if req.Activities != nil {
		data, _ := json.Marshal(req.Activities)
		club.Activities = string(data)
	}

	if err := h.db.Save(&club).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update club"})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(club))
}

// Delete deletes a club and its dependent records (admin only)
// @Summary Delete a club
// @Description Delete a club along with its memberships, events and budget requests
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} map[string]string "Club deleted"
// @Failure 404 {object} map[string]string "Club not found"
// @Security BearerAuth
// @Router /clubs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var club models.Club
	if err := h.db.First(&club, clubID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var eventIDs []uint
		if err := tx.Model(&models.Event{}).Where("club_id = ?", clubID).Pluck("id", &eventIDs).Error; err != nil {
			return err
		}
		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.EventRSVP{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("club_id = ?", clubID).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("club_id = ?", clubID).Delete(&models.BudgetRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("club_id = ?", clubID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&club).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete club"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Club deleted"})
}

// RegisterRoutes registers club routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", auth.RequireAdmin(), h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", auth.RequireAdmin(), h.Delete)
	rg.PUT("/:id/leader", auth.RequireAdmin(), h.SetLeader)
}
