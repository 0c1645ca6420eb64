package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusEvent is published by the payment service whenever a payment
// changes status, and consumed by the notification service.
type PaymentStatusEvent struct {
	EventID   string          `json:"event_id"`
	PaymentID int64           `json:"payment_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}
