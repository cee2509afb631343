package events

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Handler handles event-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new events handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Capacity    int       `json:"capacity" binding:"omitempty,min=0"`
}

// UpdateEventRequest represents the request to update an event
type UpdateEventRequest struct {
	Title       string     `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity"`
}

// RSVPRequest represents an RSVP to an event
type RSVPRequest struct {
	Status string `json:"status" binding:"required,oneof=going interested declined"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          uint   `json:"id"`
	ClubID      uint   `json:"club_id"`
	ClubName    string `json:"club_name,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	Capacity    int    `json:"capacity,omitempty"`
	GoingCount  int    `json:"going_count"`
}

// AttendeeResponse represents an RSVP'd user in API responses
type AttendeeResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (h *Handler) toResponse(event models.Event) EventResponse {
	var goingCount int64
	h.db.Model(&models.EventRSVP{}).
		Where("event_id = ? AND status = ?", event.ID, models.RSVPGoing).
		Count(&goingCount)

	return EventResponse{
		ID:          event.ID,
		ClubID:      event.ClubID,
		ClubName:    event.Club.Name,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt.Format(time.RFC3339),
		EndsAt:      event.EndsAt.Format(time.RFC3339),
		Capacity:    event.Capacity,
		GoingCount:  int(goingCount),
	}
}

// canManage reports whether the actor may create or modify events for a club
func (h *Handler) canManage(c *gin.Context, clubID uint) bool {
	role, _ := auth.GetRole(c)
	if role == models.RoleAdmin {
		return true
	}
	userID, _ := auth.GetUserID(c)
	var club models.Club
	if err := h.db.First(&club, clubID).Error; err != nil {
		return false
	}
	return club.LeaderID != nil && *club.LeaderID == userID
}

// ListByClub returns all events of a club, upcoming first
// @Summary List club events
// @Tags events
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {array} EventResponse
// @Security BearerAuth
// @Router /clubs/{id}/events [get]
func (h *Handler) ListByClub(c *gin.Context) {
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var events []models.Event
	if err := h.db.Preload("Club").Where("club_id = ?", clubID).Order("starts_at").Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = h.toResponse(event)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns a specific event
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.Preload("Club").First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(event))
}

// Create creates an event for a club (admin or that club's leader)
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body CreateEventRequest true "Event details"
// @Success 201 {object} EventResponse
// @Failure 403 {object} map[string]string "Not your club"
// @Security BearerAuth
// @Router /clubs/{id}/events [post]
func (h *Handler) Create(c *gin.Context) {
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

	if !h.canManage(c, uint(clubID)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin or club leader access required"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event must end after it starts"})
		return
	}

	userID, _ := auth.GetUserID(c)
	event := models.Event{
		ClubID:      uint(clubID),
		CreatedByID: userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}
	if err := h.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}
	event.Club = club

	c.JSON(http.StatusCreated, h.toResponse(event))
}

// Update updates an event (admin or that club's leader)
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body UpdateEventRequest true "Updated event details"
// @Success 200 {object} EventResponse
// @Failure 403 {object} map[string]string "Not your club"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.Preload("Club").First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if !h.canManage(c, event.ClubID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin or club leader access required"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if !event.EndsAt.After(event.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event must end after it starts"})
		return
	}

	if err := h.db.Save(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(event))
}

// Delete deletes an event and its RSVPs (admin or that club's leader)
// @Summary Delete an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} map[string]string "Event deleted"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if !h.canManage(c, event.ClubID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin or club leader access required"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventRSVP{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// RSVP records or updates the current user's RSVP to an event
// @Summary RSVP to an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body RSVPRequest true "RSVP status"
// @Success 200 {object} map[string]string "RSVP recorded"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id}/rsvp [put]
func (h *Handler) RSVP(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rsvp models.EventRSVP
	err = h.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&rsvp).Error
	if err != nil {
		rsvp = models.EventRSVP{
			EventID: uint(eventID),
			UserID:  userID,
			Status:  models.RSVPStatus(req.Status),
		}
		if err := h.db.Create(&rsvp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record RSVP"})
			return
		}
	} else {
		rsvp.Status = models.RSVPStatus(req.Status)
		if err := h.db.Save(&rsvp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update RSVP"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "RSVP recorded", "status": req.Status})
}

// Attendees lists users who have RSVP'd to an event
// @Summary List event attendees
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} AttendeeResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id}/attendees [get]
func (h *Handler) Attendees(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	if err := h.db.First(&models.Event{}, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var rsvps []models.EventRSVP
	if err := h.db.Preload("User").Where("event_id = ?", eventID).Find(&rsvps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendees"})
		return
	}

	attendees := make([]AttendeeResponse, len(rsvps))
	for i, r := range rsvps {
		attendees[i] = AttendeeResponse{
			UserID: r.UserID,
			Name:   r.User.Name,
			Email:  r.User.Email,
			Status: string(r.Status),
		}
	}

	c.JSON(http.StatusOK, attendees)
}

// RegisterClubRoutes registers the club-scoped event routes
func (h *Handler) RegisterClubRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/events", h.ListByClub)
	rg.POST("/:id/events", h.Create)
}

// RegisterRoutes registers event routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/rsvp", h.RSVP)
	rg.GET("/:id/attendees", h.Attendees)
}
