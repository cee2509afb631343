package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles notification requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new notifications handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// List returns the current user's notifications, newest first
// @Summary List notifications
// @Description Get the authenticated user's notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} NotificationResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var rows []models.Notification
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	responses := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		responses[i] = NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, responses)
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}
