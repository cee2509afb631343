package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents a user's system-wide role
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleClubLeader UserRole = "club_leader"
	RoleAdmin      UserRole = "admin"
)

// User represents a student, club leader, or administrator
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'student'" json:"role"`
	StudentID    *string        `gorm:"uniqueIndex" json:"student_id,omitempty"`
	Department   string         `json:"department,omitempty"`
	Semester     string         `json:"semester,omitempty"`
	Phone        string         `json:"phone,omitempty"`

	// Relationships
	Memberships   []Membership   `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}
