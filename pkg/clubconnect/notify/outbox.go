package notify

import (
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

// Enqueue writes a notification row using the given handle. Callers pass
// their open transaction so the row commits or rolls back together with the
// state change that produced it; delivery happens later via the Relayer.
func Enqueue(tx *gorm.DB, userID uint, typ, title, message string) error {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Status:  models.DeliveryPending,
	}
	return tx.Create(&n).Error
}
