package models

import (
	"time"

	"gorm.io/gorm"
)

// ClubStatus represents the lifecycle state of a club
type ClubStatus string

const (
	ClubStatusPending   ClubStatus = "pending"
	ClubStatusActive    ClubStatus = "active"
	ClubStatusInactive  ClubStatus = "inactive"
	ClubStatusSuspended ClubStatus = "suspended"
)

// Club represents a student club.
// LeaderID is a nullable single-value reference: a club has at most one
// leader, and that user's Role is kept in sync by the leader assignment flow.
type Club struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `json:"description"`
	Department  string         `json:"department,omitempty"`
	Status      ClubStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	LeaderID    *uint          `json:"leader_id,omitempty"`
	Activities  string         `gorm:"type:text" json:"activities,omitempty"` // JSON-encoded list of strings

	// Relationships
	Leader      *User        `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Memberships []Membership `gorm:"foreignKey:ClubID" json:"memberships,omitempty"`
	Events      []Event      `gorm:"foreignKey:ClubID" json:"events,omitempty"`
}
