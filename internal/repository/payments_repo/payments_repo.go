package payments_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JustJirka/P6PP/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateTx(ctx context.Context, querier domain.Querier, payment *domain.Payment) (int64, error) {
	query := `
		INSERT INTO payments (user_id, amount, status, kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := querier.QueryRowContext(ctx, query,
		payment.UserID,
		payment.Amount,
		payment.Status,
		payment.Kind,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create payment for user %d: %w", payment.UserID, err)
	}
	return id, nil
}

func (r *paymentRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, status, kind, created_at, updated_at
		FROM payments
		WHERE id = $1
	`
	payment := &domain.Payment{}
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Amount,
		&payment.Status,
		&payment.Kind,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by id %d: %w", id, err)
	}
	return payment, nil
}

// GetByIDForUpdateTx reads a payment under FOR UPDATE. Must run inside a
// transaction; the row stays locked until commit or rollback, so a
// concurrent status change waits behind this read instead of racing it.
func (r *paymentRepository) GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, status, kind, created_at, updated_at
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`
	payment := &domain.Payment{}
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Amount,
		&payment.Status,
		&payment.Kind,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by id %d for update: %w", id, err)
	}
	return payment, nil
}

func (r *paymentRepository) UpdateStatusTx(ctx context.Context, querier domain.Querier, id int64, status domain.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	res, err := querier.ExecContext(ctx, query, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status for payment %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for payment status update: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
