package notifications_repo

import (
	"context"
	"database/sql"
	"fmt"
)

type notificationLogRepository struct {
	db *sql.DB
}

func NewNotificationLogRepository(db *sql.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

// Record inserts a log row for a consumed event. Kafka redelivers on
// rebalance, so duplicate event ids are silently ignored.
func (r *notificationLogRepository) Record(ctx context.Context, entry *NotificationLogEntry) error {
	query := `
		INSERT INTO notification_log (event_id, payment_id, user_id, status, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.EventID,
		entry.PaymentID,
		entry.UserID,
		entry.Status,
		entry.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification for event %s: %w", entry.EventID, err)
	}
	return nil
}
