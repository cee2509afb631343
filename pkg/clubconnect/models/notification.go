package models

import "time"

// DeliveryStatus tracks outbox delivery of a notification
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Notification types
const (
	NotificationApplication = "membership_application"
	NotificationApproval    = "membership_approved"
	NotificationRejection   = "membership_rejected"
	NotificationPromotion   = "leader_promotion"
)

// Notification is an outbox row. It is written in the same transaction as the
// state change that produced it and delivered asynchronously by the relayer,
// so delivery failures cannot affect the originating operation.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Type      string         `gorm:"size:40" json:"type"`
	Status    DeliveryStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Retry     int            `gorm:"not null;default:0" json:"retry"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
