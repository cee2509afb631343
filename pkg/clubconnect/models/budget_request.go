package models

import (
	"time"

	"gorm.io/gorm"
)

// BudgetStatus represents the review state of a budget request
type BudgetStatus string

const (
	BudgetPending  BudgetStatus = "pending"
	BudgetApproved BudgetStatus = "approved"
	BudgetRejected BudgetStatus = "rejected"
)

// BudgetRequest represents a club's request for funds
type BudgetRequest struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ClubID        uint           `gorm:"not null;index" json:"club_id"`
	RequestedByID uint           `gorm:"not null" json:"requested_by_id"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Purpose       string         `gorm:"not null" json:"purpose"`
	Status        BudgetStatus   `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReviewedByID  *uint          `json:"reviewed_by_id,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNote    string         `json:"review_note,omitempty"`

	// Relationships
	Club        Club  `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	RequestedBy User  `gorm:"foreignKey:RequestedByID" json:"requested_by,omitempty"`
	ReviewedBy  *User `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
}
