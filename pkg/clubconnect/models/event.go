package models

import (
	"time"

	"gorm.io/gorm"
)

// RSVPStatus represents a user's response to an event
type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPInterested RSVPStatus = "interested"
	RSVPDeclined   RSVPStatus = "declined"
)

// Event represents a club event
type Event struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ClubID      uint           `gorm:"not null;index" json:"club_id"`
	CreatedByID uint           `gorm:"not null" json:"created_by_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      time.Time      `json:"ends_at"`
	Capacity    int            `json:"capacity,omitempty"` // 0 means unlimited

	// Relationships
	Club  Club        `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	RSVPs []EventRSVP `gorm:"foreignKey:EventID" json:"rsvps,omitempty"`
}

// EventRSVP represents a user's RSVP to an event.
// Each user has at most one RSVP per event.
type EventRSVP struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	EventID   uint       `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	Status    RSVPStatus `gorm:"type:varchar(20);default:'going'" json:"status"`

	// Relationships
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
