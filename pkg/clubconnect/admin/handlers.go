package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID              uint   `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	StudentID       string `json:"student_id,omitempty"`
	Department      string `json:"department,omitempty"`
	CreatedAt       string `json:"created_at"`
	MembershipCount int64  `json:"membership_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role" binding:"omitempty,oneof=student club_leader admin"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalUsers           int64 `json:"total_users"`
	TotalClubs           int64 `json:"total_clubs"`
	TotalEvents          int64 `json:"total_events"`
	TotalBudgetRequests  int64 `json:"total_budget_requests"`
	TotalMemberships     int64 `json:"total_memberships"`
	PendingMemberships   int64 `json:"pending_memberships"`
	AcceptedMemberships  int64 `json:"accepted_memberships"`
	RejectedMemberships  int64 `json:"rejected_memberships"`
	PendingBudgetReviews int64 `json:"pending_budget_reviews"`
	AdminUsers           int64 `json:"admin_users"`
}

// ListUsers returns all users (admin only)
// @Summary List users
// @Description List users with optional search and role filter
// @Tags admin
// @Produce json
// @Param q query string false "Search over email, name and student ID"
// @Param role query string false "Filter by role"
// @Success 200 {array} UserResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC")

	// Optional search by email, name or student ID
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR student_id LIKE ?", like, like, like)
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		var membershipCount int64
		h.db.Model(&models.Membership{}).Where("user_id = ?", user.ID).Count(&membershipCount)

		responses[i] = UserResponse{
			ID:              user.ID,
			Email:           user.Email,
			Name:            user.Name,
			Role:            string(user.Role),
			Department:      user.Department,
			CreatedAt:       user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			MembershipCount: membershipCount,
		}
		if user.StudentID != nil {
			responses[i].StudentID = *user.StudentID
		}
	}

	c.JSON(http.StatusOK, responses)
}

// UpdateUser updates a user's name or role (admin only)
// @Summary Update a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Updated user details"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	resp := UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       string(user.Role),
		Department: user.Department,
		CreatedAt:  user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.StudentID != nil {
		resp.StudentID = *user.StudentID
	}
	c.JSON(http.StatusOK, resp)
}

// Stats returns system statistics (admin only)
// @Summary System statistics
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Club{}).Count(&stats.TotalClubs)
	h.db.Model(&models.Event{}).Count(&stats.TotalEvents)
	h.db.Model(&models.BudgetRequest{}).Count(&stats.TotalBudgetRequests)
	h.db.Model(&models.Membership{}).Count(&stats.TotalMemberships)
	h.db.Model(&models.Membership{}).Where("status = ?", models.MembershipPending).Count(&stats.PendingMemberships)
	h.db.Model(&models.Membership{}).Where("status = ?", models.MembershipAccepted).Count(&stats.AcceptedMemberships)
	h.db.Model(&models.Membership{}).Where("status = ?", models.MembershipRejected).Count(&stats.RejectedMemberships)
	h.db.Model(&models.BudgetRequest{}).Where("status = ?", models.BudgetPending).Count(&stats.PendingBudgetReviews)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.AdminUsers)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
	rg.GET("/users", h.ListUsers)
	rg.PUT("/users/:id", h.UpdateUser)
}
