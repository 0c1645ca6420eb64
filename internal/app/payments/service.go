package payments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/cache"
	"github.com/JustJirka/P6PP/internal/client"
	"github.com/JustJirka/P6PP/internal/domain"
	"github.com/JustJirka/P6PP/internal/outbox"
	"github.com/JustJirka/P6PP/internal/repository/credits_repo"
	"github.com/JustJirka/P6PP/internal/repository/outbox_repo"
	"github.com/JustJirka/P6PP/internal/repository/payments_repo"
	"github.com/JustJirka/P6PP/internal/util"
)

// PaymentService applies the business rules for creating payments, checking
// and adjusting credit balances, and moving payments through their status
// lifecycle. It shields the repositories from callers and owns all
// transaction boundaries.
type PaymentService interface {
	CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	CreatePaymentCredits(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	ConfirmPayment(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error)
	UpdateCreditsReservation(ctx context.Context, userID int64, amount decimal.Decimal) error
	UpdateCredits(ctx context.Context, userID int64, amount decimal.Decimal) error
	GetPaymentByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetBalanceByID(ctx context.Context, userID int64) (*domain.UserCredit, error)
	GetCreditTransaction(ctx context.Context, id int64) (*domain.Payment, error)
	CreateBalance(ctx context.Context, userID int64) (int64, error)
}

type paymentService struct {
	db          *sql.DB
	paymentRepo payments_repo.PaymentRepository
	creditRepo  credits_repo.CreditRepository
	outboxRepo  outbox_repo.OutboxRepository
	cache       *cache.Cache
	users       client.UserClient
	logger      *zap.Logger
}

func NewPaymentService(
	db *sql.DB,
	paymentRepo payments_repo.PaymentRepository,
	creditRepo credits_repo.CreditRepository,
	outboxRepo outbox_repo.OutboxRepository,
	paymentCache *cache.Cache,
	users client.UserClient,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		db:          db,
		paymentRepo: paymentRepo,
		creditRepo:  creditRepo,
		outboxRepo:  outboxRepo,
		cache:       paymentCache,
		users:       users,
		logger:      logger,
	}
}

// CreatePayment inserts a pending reservation-kind payment. No balance check
// happens at creation time; the balance is checked later when the payment is
// confirmed.
func (s *paymentService) CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	return s.createPayment(ctx, userID, amount, domain.KindReservation)
}

// CreatePaymentCredits inserts a pending credit-kind payment (top-up or
// refund).
func (s *paymentService) CreatePaymentCredits(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	return s.createPayment(ctx, userID, amount, domain.KindCredit)
}

func (s *paymentService) createPayment(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.TransactionKind) (int64, error) {
	if amount.Sign() < 0 {
		return 0, fmt.Errorf("payment amount must not be negative")
	}

	now := time.Now()
	payment := &domain.Payment{
		UserID:    userID,
		Amount:    amount,
		Status:    domain.PaymentStatusPending,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.paymentRepo.CreateTx(ctx, s.db, payment)
	if err != nil {
		s.logger.Error("Failed to create payment",
			zap.Int64("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.Info("Payment created",
		zap.Int64("payment_id", id),
		zap.Int64("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("kind", string(kind)))
	return id, nil
}

// ConfirmPayment moves a payment to the requested status. For the
// pending -> confirm transition the owner's balance is adjusted in the same
// database transaction as the status change: reservation payments debit the
// balance, credit payments add to it. An outbox event is written inside the
// transaction as well. Re-applying the current status is a no-op success.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for payment confirmation",
			zap.Int64("payment_id", paymentID), zap.Error(err))
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// The status read holds the row lock until commit, so two concurrent
	// confirmations of one payment serialize here: the second sees the
	// already-updated status instead of a stale pending one and cannot
	// debit the balance a second time.
	payment, err := s.paymentRepo.GetByIDForUpdateTx(ctx, tx, paymentID)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if payment.Status == status {
		tx.Rollback()
		s.logger.Info("Payment already in requested status",
			zap.Int64("payment_id", paymentID),
			zap.String("status", string(status)))
		return payment.ID, nil
	}
	if !payment.Status.CanTransitionTo(status) {
		tx.Rollback()
		return 0, fmt.Errorf("payment %d cannot move from %s to %s: %w",
			paymentID, payment.Status, status, domain.ErrInvalidStatusTransition)
	}

	switch payment.Kind {
	case domain.KindReservation:
		err = s.creditRepo.DebitTx(ctx, tx, payment.UserID, payment.Amount)
	case domain.KindCredit:
		err = s.creditRepo.CreditTx(ctx, tx, payment.UserID, payment.Amount)
	default:
		err = fmt.Errorf("unknown transaction kind %q", payment.Kind)
	}
	if err != nil {
		tx.Rollback()
		if err == domain.ErrInsufficientCredit {
			s.logger.Warn("Insufficient credit for reservation payment",
				zap.Int64("payment_id", paymentID),
				zap.Int64("user_id", payment.UserID),
				zap.String("amount", payment.Amount.String()))
			return 0, domain.ErrInsufficientCredit
		}
		return 0, fmt.Errorf("failed to adjust credit balance for payment %d: %w", paymentID, err)
	}

	if err := s.paymentRepo.UpdateStatusTx(ctx, tx, paymentID, status); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update status for payment %d: %w", paymentID, err)
	}

	now := time.Now()
	payload, err := outbox.PreparePaymentStatusPayload(payment, status, now)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare outbox payload for payment %d: %w", paymentID, err)
	}
	outboxMsg := &domain.OutboxMessage{
		ID:        util.GenerateUUID(),
		PaymentID: paymentID,
		Payload:   payload,
		Status:    domain.OutboxStatusPending,
		CreatedAt: now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, outboxMsg); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to create outbox message for payment %d: %w", paymentID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit payment confirmation",
			zap.Int64("payment_id", paymentID), zap.Error(err))
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Delete(cache.Key("payment", paymentID))

	s.logger.Info("Payment status changed",
		zap.Int64("payment_id", paymentID),
		zap.Int64("user_id", payment.UserID),
		zap.String("status", string(status)),
		zap.String("kind", string(payment.Kind)))
	return paymentID, nil
}

// UpdateCreditsReservation debits amount from the user's balance. The debit
// is a single conditional update, so a concurrent debit racing this one can
// never drive the balance negative.
func (s *paymentService) UpdateCreditsReservation(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if err := s.creditRepo.DebitTx(ctx, s.db, userID, amount); err != nil {
		if err == domain.ErrInsufficientCredit || err == domain.ErrBalanceNotFound {
			return err
		}
		return fmt.Errorf("failed to debit credits for user %d: %w", userID, err)
	}
	s.logger.Info("Credits debited",
		zap.Int64("user_id", userID),
		zap.String("amount", amount.String()))
	return nil
}

// UpdateCredits adds amount to the user's balance, creating the balance row
// on the first grant. No upper bound is enforced.
func (s *paymentService) UpdateCredits(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if err := s.creditRepo.CreditTx(ctx, s.db, userID, amount); err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", userID, err)
	}
	s.logger.Info("Credits added",
		zap.Int64("user_id", userID),
		zap.String("amount", amount.String()))
	return nil
}

// GetPaymentByID reads through the short-TTL cache. The cache is advisory:
// a miss always falls back to the repository.
func (s *paymentService) GetPaymentByID(ctx context.Context, id int64) (*domain.Payment, error) {
	key := cache.Key("payment", id)
	if cached, ok := s.cache.Get(key); ok {
		if payment, ok := cached.(*domain.Payment); ok {
			return payment, nil
		}
	}

	payment, err := s.paymentRepo.GetByIDTx(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, payment)
	return payment, nil
}

func (s *paymentService) GetBalanceByID(ctx context.Context, userID int64) (*domain.UserCredit, error) {
	return s.creditRepo.GetByUserIDTx(ctx, s.db, userID)
}

// GetCreditTransaction fetches a payment and returns it only when its kind
// is credit. The only caller is the credit top-up confirmation path, which
// must never operate on reservation charges.
func (s *paymentService) GetCreditTransaction(ctx context.Context, id int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByIDTx(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment.Kind != domain.KindCredit {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// CreateBalance verifies the user with the user service and inserts a
// zero-balance row. A failed outbound call is a hard failure of the request.
func (s *paymentService) CreateBalance(ctx context.Context, userID int64) (int64, error) {
	exists, err := s.users.CheckUserExists(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to verify user %d: %w", userID, err)
	}
	if !exists {
		return 0, domain.ErrUserNotFound
	}

	credit := &domain.UserCredit{
		UserID:  userID,
		Balance: decimal.Zero,
	}
	id, err := s.creditRepo.CreateTx(ctx, s.db, credit)
	if err != nil {
		if err == domain.ErrBalanceAlreadyExists {
			s.logger.Warn("Credit balance already exists", zap.Int64("user_id", userID))
			return 0, err
		}
		return 0, fmt.Errorf("failed to create credit balance for user %d: %w", userID, err)
	}

	s.logger.Info("Credit balance created",
		zap.Int64("balance_id", id),
		zap.Int64("user_id", userID))
	return id, nil
}
