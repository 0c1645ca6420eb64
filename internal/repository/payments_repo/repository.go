package payments_repo

import (
	"context"

	"github.com/JustJirka/P6PP/internal/domain"
)

type PaymentRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, payment *domain.Payment) (int64, error)
	GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Payment, error)
	GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id int64) (*domain.Payment, error)
	UpdateStatusTx(ctx context.Context, querier domain.Querier, id int64, status domain.PaymentStatus) error
}
