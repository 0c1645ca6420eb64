package credits_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/JustJirka/P6PP/internal/domain"
)

type creditRepository struct {
	db *sql.DB
}

func NewCreditRepository(db *sql.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) CreateTx(ctx context.Context, querier domain.Querier, credit *domain.UserCredit) (int64, error) {
	query := `
		INSERT INTO user_credits (user_id, balance)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	err := querier.QueryRowContext(ctx, query, credit.UserID, credit.Balance).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return 0, domain.ErrBalanceAlreadyExists
		}
		return 0, fmt.Errorf("failed to create credit balance for user %d: %w", credit.UserID, err)
	}
	return id, nil
}

func (r *creditRepository) GetByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) (*domain.UserCredit, error) {
	query := `
		SELECT id, user_id, balance
		FROM user_credits
		WHERE user_id = $1
	`
	credit := &domain.UserCredit{}
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&credit.ID,
		&credit.UserID,
		&credit.Balance,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get credit balance for user %d: %w", userID, err)
	}
	return credit, nil
}

// DebitTx subtracts amount from the user's balance as a single conditional
// update. The balance guard lives in the WHERE clause, so two concurrent
// debits can never drive the balance negative: the second one simply
// affects zero rows.
func (r *creditRepository) DebitTx(ctx context.Context, querier domain.Querier, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE user_credits
		SET balance = balance - $1
		WHERE user_id = $2 AND balance >= $1
	`
	res, err := querier.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit credit balance for user %d: %w", userID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for credit debit: %w", err)
	}
	if rowsAffected == 0 {
		// Either the row is missing or the balance is short.
		if _, getErr := r.GetByUserIDTx(ctx, querier, userID); getErr != nil {
			return getErr
		}
		return domain.ErrInsufficientCredit
	}
	return nil
}

// CreditTx adds amount to the user's balance, creating the row on the first
// grant. No upper bound is enforced.
func (r *creditRepository) CreditTx(ctx context.Context, querier domain.Querier, userID int64, amount decimal.Decimal) error {
	query := `
		INSERT INTO user_credits (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = user_credits.balance + EXCLUDED.balance
	`
	if _, err := querier.ExecContext(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", userID, err)
	}
	return nil
}
