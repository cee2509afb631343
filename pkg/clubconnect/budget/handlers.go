package budget

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles budget request endpoints
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new budget handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateRequest represents a budget request submission
type CreateRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Purpose string  `json:"purpose" binding:"required,min=1,max=500"`
}

// ReviewRequest represents an approve/reject decision on a budget request
type ReviewRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Note   string `json:"note"`
}

// BudgetResponse represents a budget request in API responses
type BudgetResponse struct {
	ID          uint    `json:"id"`
	ClubID      uint    `json:"club_id"`
	ClubName    string  `json:"club_name,omitempty"`
	Amount      float64 `json:"amount"`
	Purpose     string  `json:"purpose"`
	Status      string  `json:"status"`
	ReviewNote  string  `json:"review_note,omitempty"`
	RequestedBy string  `json:"requested_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toResponse(r models.BudgetRequest) BudgetResponse {
	return BudgetResponse{
		ID:          r.ID,
		ClubID:      r.ClubID,
		ClubName:    r.Club.Name,
		Amount:      r.Amount,
		Purpose:     r.Purpose,
		Status:      string(r.Status),
		ReviewNote:  r.ReviewNote,
		RequestedBy: r.RequestedBy.Name,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create submits a budget request for a club (that club's leader only)
// @Summary Submit a budget request
// @Tags budget
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body CreateRequest true "Budget request"
// @Success 201 {object} BudgetResponse
// @Failure 403 {object} map[string]string "Not your club"
// @Failure 404 {object} map[string]string "Club not found"
// @Security BearerAuth
// @Router /clubs/{id}/budget-requests [post]
func (h *Handler) Create(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the club leader can request budget"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request := models.BudgetRequest{
		ClubID:        uint(clubID),
		RequestedByID: userID,
		Amount:        req.Amount,
		Purpose:       req.Purpose,
		Status:        models.BudgetPending,
	}
	if err := h.db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget request"})
		return
	}
	request.Club = club

	c.JSON(http.StatusCreated, toResponse(request))
}

// List returns budget requests: all for admins, own clubs for leaders
// @Summary List budget requests
// @Tags budget
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} BudgetResponse
// @Security BearerAuth
// @Router /budget-requests [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	role, _ := auth.GetRole(c)

	query := h.db.Preload("Club").Preload("RequestedBy").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if role != models.RoleAdmin {
		var ledClubIDs []uint
		if err := h.db.Model(&models.Club{}).Where("leader_id = ?", userID).
			Pluck("id", &ledClubIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clubs"})
			return
		}
		query = query.Where("club_id IN ?", ledClubIDs)
	}

	var rows []models.BudgetRequest
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budget requests"})
		return
	}

	responses := make([]BudgetResponse, len(rows))
	for i, r := range rows {
		responses[i] = toResponse(r)
	}

	c.JSON(http.StatusOK, responses)
}

// Review approves or rejects a pending budget request (admin only).
// The update is conditioned on the request still being pending.
// @Summary Review a budget request
// @Tags budget
// @Accept json
// @Produce json
// @Param id path int true "Budget request ID"
// @Param request body ReviewRequest true "Decision"
// @Success 200 {object} BudgetResponse
// @Failure 404 {object} map[string]string "Budget request not found"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Security BearerAuth
// @Router /budget-requests/{id}/review [put]
func (h *Handler) Review(c *gin.Context) {
	reviewerID, _ := auth.GetUserID(c)
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget request ID"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.BudgetRequest
	if err := h.db.First(&request, requestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget request not found"})
		return
	}

	status := models.BudgetRejected
	if req.Action == "approve" {
		status = models.BudgetApproved
	}
	now := time.Now()

	res := h.db.Model(&models.BudgetRequest{}).
		Where("id = ? AND status = ?", requestID, models.BudgetPending).
		Updates(map[string]interface{}{
			"status":         status,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    &now,
			"review_note":    req.Note,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review budget request"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget request has already been reviewed"})
		return
	}

	h.db.Preload("Club").Preload("RequestedBy").First(&request, requestID)
	c.JSON(http.StatusOK, toResponse(request))
}

// RegisterClubRoutes registers the club-scoped budget routes
func (h *Handler) RegisterClubRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/budget-requests", h.Create)
}

// RegisterRoutes registers budget request routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", auth.RequireLeaderOrAdmin(), h.List)
	rg.PUT("/:id/review", auth.RequireAdmin(), h.Review)
}
