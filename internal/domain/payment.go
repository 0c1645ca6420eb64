package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusConfirm PaymentStatus = "confirm"
)

// ParsePaymentStatus maps an incoming status string to the closed
// enumeration. The original data model carried free-text statuses; anything
// outside the enumeration is rejected here instead of being written through.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusConfirm:
		return PaymentStatusConfirm, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// CanTransitionTo reports whether moving from s to next is legal. The only
// real transition is pending -> confirm; re-applying the current status is
// allowed so that repeated identical updates stay idempotent.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	return s == PaymentStatusPending && next == PaymentStatusConfirm
}

type TransactionKind string

const (
	KindReservation TransactionKind = "reservation"
	KindCredit      TransactionKind = "credit"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindReservation:
		return KindReservation, nil
	case KindCredit:
		return KindCredit, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Payment is one monetary transaction attempt: either a reservation charge
// or a credit top-up. Kind never changes after creation and payments are
// never deleted.
type Payment struct {
	ID        int64
	UserID    int64
	Amount    decimal.Decimal
	Status    PaymentStatus
	Kind      TransactionKind
	CreatedAt time.Time
	UpdatedAt time.Time
}
