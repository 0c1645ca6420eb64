package notifications_repo

import (
	"context"
	"time"
)

// NotificationLogEntry records a consumed payment-status event. Email
// delivery itself is handled elsewhere; the log is what the admin dashboard
// reads.
type NotificationLogEntry struct {
	EventID    string
	PaymentID  int64
	UserID     int64
	Status     string
	ReceivedAt time.Time
}

type NotificationLogRepository interface {
	Record(ctx context.Context, entry *NotificationLogEntry) error
}
