package credits_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JustJirka/P6PP/internal/domain"
)

type CreditRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, credit *domain.UserCredit) (int64, error)
	GetByUserIDTx(ctx context.Context, querier domain.Querier, userID int64) (*domain.UserCredit, error)
	DebitTx(ctx context.Context, querier domain.Querier, userID int64, amount decimal.Decimal) error
	CreditTx(ctx context.Context, querier domain.Querier, userID int64, amount decimal.Decimal) error
}
