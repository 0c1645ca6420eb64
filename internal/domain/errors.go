package domain

import "errors"

var ErrPaymentNotFound = errors.New("payment not found")
var ErrBalanceNotFound = errors.New("credit balance not found")
var ErrBalanceAlreadyExists = errors.New("credit balance already exists")
var ErrInsufficientCredit = errors.New("insufficient credit balance")
var ErrInvalidStatusTransition = errors.New("invalid payment status transition")
var ErrUserNotFound = errors.New("user not found")
