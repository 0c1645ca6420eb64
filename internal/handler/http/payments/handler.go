package payments_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/app/payments"
	"github.com/JustJirka/P6PP/internal/domain"
)

type PaymentHandler struct {
	service  payments.PaymentService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewPaymentHandler(s payments.PaymentService, l *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  s,
		validate: validator.New(),
		logger:   l,
	}
}

type CreatePaymentRequest struct {
	UserID          int64           `json:"userId" validate:"required,gt=0"`
	RoleID          int64           `json:"roleId"`
	TransactionType string          `json:"transactionType" validate:"required,oneof=reservation credit"`
	Amount          decimal.Decimal `json:"amount"`
}

type UpdatePaymentRequest struct {
	ID     int64  `json:"Id" validate:"required,gt=0"`
	Status string `json:"Status" validate:"required"`
}

type CreateBalanceRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type BalanceResponse struct {
	UserID        int64           `json:"userId"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

type PaymentResponse struct {
	PaymentID       int64           `json:"paymentId"`
	UserID          int64           `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	TransactionType string          `json:"transactionType"`
	CreatedAt       string          `json:"createdAt"`
}

// CreatePaymentHandler creates a pending payment of the requested kind. The
// roleId field is accepted for compatibility with the platform clients and
// ignored here.
func (h *PaymentHandler) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreatePayment", zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Invalid request body"))
		return
	}

	var messages []string
	if err := h.validate.Struct(req); err != nil {
		messages = validationMessages(err)
	}
	if req.Amount.Sign() <= 0 {
		messages = append(messages, "amount must be greater than 0")
	}
	if len(messages) > 0 {
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(messages, "Validation failed"))
		return
	}

	var id int64
	var err error
	switch domain.TransactionKind(req.TransactionType) {
	case domain.KindCredit:
		id, err = h.service.CreatePaymentCredits(r.Context(), req.UserID, req.Amount)
	default:
		id, err = h.service.CreatePayment(r.Context(), req.UserID, req.Amount)
	}
	if err != nil {
		h.logger.Error("Failed to create payment", zap.Int64("user_id", req.UserID), zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Payment not created"))
		return
	}

	writeEnvelope(w, h.logger, http.StatusOK, Ok(id))
}

// UpdatePaymentHandler changes a payment's status. Confirming a reservation
// debits the owner's balance; confirming a credit top-up adds to it. An
// insufficient balance fails the request without mutating anything.
func (h *PaymentHandler) UpdatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for UpdatePayment", zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Invalid request body"))
		return
	}

	var messages []string
	if err := h.validate.Struct(req); err != nil {
		messages = validationMessages(err)
	}
	status, err := domain.ParsePaymentStatus(req.Status)
	if err != nil && req.Status != "" {
		messages = append(messages, "Status must be one of: pending confirm")
	}
	if len(messages) > 0 {
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(messages, "Validation failed"))
		return
	}

	id, err := h.service.ConfirmPayment(r.Context(), req.ID, status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentNotFound):
			writeEnvelope(w, h.logger, http.StatusNotFound, Fail(nil, "Payment not found"))
		case errors.Is(err, domain.ErrInsufficientCredit):
			writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Insufficient credit balance"))
		case errors.Is(err, domain.ErrBalanceNotFound):
			writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Credit balance not found"))
		case errors.Is(err, domain.ErrInvalidStatusTransition):
			writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Invalid status transition"))
		default:
			h.logger.Error("Failed to update payment", zap.Int64("payment_id", req.ID), zap.Error(err))
			writeEnvelope(w, h.logger, http.StatusInternalServerError, Fail(nil, "Payment not updated"))
		}
		return
	}

	writeEnvelope(w, h.logger, http.StatusOK, Ok(id))
}

func (h *PaymentHandler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseIDParam(w, r, "userId")
	if !ok {
		return
	}

	credit, err := h.service.GetBalanceByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceNotFound) {
			writeEnvelope(w, h.logger, http.StatusNotFound, Fail(nil, "Credit balance not found"))
			return
		}
		h.logger.Error("Failed to get balance", zap.Int64("user_id", userID), zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusInternalServerError, Fail(nil, "Failed to get balance"))
		return
	}

	writeEnvelope(w, h.logger, http.StatusOK, Ok(BalanceResponse{
		UserID:        credit.UserID,
		CreditBalance: credit.Balance,
	}))
}

func (h *PaymentHandler) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetPaymentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			writeEnvelope(w, h.logger, http.StatusNotFound, Fail(nil, "Payment not found"))
			return
		}
		h.logger.Error("Failed to get payment", zap.Int64("payment_id", id), zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusInternalServerError, Fail(nil, "Failed to get payment"))
		return
	}

	writeEnvelope(w, h.logger, http.StatusOK, Ok(PaymentResponse{
		PaymentID:       payment.ID,
		UserID:          payment.UserID,
		Amount:          payment.Amount,
		Status:          string(payment.Status),
		TransactionType: string(payment.Kind),
		CreatedAt:       payment.CreatedAt.Format(time.RFC3339),
	}))
}

func (h *PaymentHandler) CreateBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateBalance", zap.Error(err))
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(validationMessages(err), "Validation failed"))
		return
	}

	id, err := h.service.CreateBalance(r.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBalanceAlreadyExists):
			writeEnvelope(w, h.logger, http.StatusConflict, Fail(nil, "Credit balance already exists"))
		case errors.Is(err, domain.ErrUserNotFound):
			writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "User not found"))
		default:
			h.logger.Error("Failed to create balance", zap.Int64("user_id", req.UserID), zap.Error(err))
			writeEnvelope(w, h.logger, http.StatusInternalServerError, Fail(nil, "Balance not created"))
		}
		return
	}

	writeEnvelope(w, h.logger, http.StatusOK, Ok(id))
}

func (h *PaymentHandler) parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeEnvelope(w, h.logger, http.StatusBadRequest, Fail(nil, "Invalid "+name))
		return 0, false
	}
	return id, true
}
