package domain

import "github.com/shopspring/decimal"

// UserCredit is a user's stored balance, used to pay for reservations
// without an external payment each time. One row per user.
type UserCredit struct {
	ID      int64
	UserID  int64
	Balance decimal.Decimal
}
