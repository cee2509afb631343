package notify

import (
	"context"
	"log"
	"time"

	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gorm.io/gorm"
)

const maxRetries = 5

// Relayer drains pending notification rows and hands them to a Sender.
// Rows whose delivery fails are retried on later passes until maxRetries,
// then marked failed. The relayer never touches the rows' business content.
type Relayer struct {
	db        *gorm.DB
	sender    Sender
	batchSize int
	interval  time.Duration
}

// NewRelayer creates a relayer with default batch size and poll interval
func NewRelayer(db *gorm.DB, sender Sender) *Relayer {
	return &Relayer{
		db:        db,
		sender:    sender,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run polls until the context is cancelled
func (r *Relayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce processes one batch of pending notifications
func (r *Relayer) DrainOnce(ctx context.Context) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).Preload("User").
		Where("status = ? AND retry < ?", models.DeliveryPending, maxRetries).
		Order("id").Limit(r.batchSize).
		Find(&rows).Error
	if err != nil {
		log.Printf("notify: outbox query failed: %v", err)
		return
	}

	for i := range rows {
		n := rows[i]
		if err := r.sender(ctx, &n, n.User.Email); err != nil {
			log.Printf("notify: delivery of notification %d failed: %v", n.ID, err)
			updates := map[string]interface{}{"retry": gorm.Expr("retry + 1")}
			if n.Retry+1 >= maxRetries {
				updates["status"] = models.DeliveryFailed
			}
			r.db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(updates)
			continue
		}
		r.db.Model(&models.Notification{}).Where("id = ?", n.ID).
			Update("status", models.DeliverySent)
	}
}
