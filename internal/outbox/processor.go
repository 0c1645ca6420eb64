package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/domain"
	"github.com/JustJirka/P6PP/internal/domain/event"
	kafkaInfra "github.com/JustJirka/P6PP/internal/infrastructure/kafka"
	"github.com/JustJirka/P6PP/internal/util"
)

type OutboxRepository interface {
	GetPendingMessages(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error)
	UpdateMessageStatusTx(ctx context.Context, querier domain.Querier, id string, status domain.OutboxMessageStatus) error
}

// Processor polls the outbox table and publishes pending payment-status
// events to Kafka. The claim query uses FOR UPDATE SKIP LOCKED but runs
// outside a transaction, so the locks vanish at statement end: delivery is
// at-least-once and consumers must dedup on event id. A crash between
// publish and the SENT update also replays the message.
type Processor struct {
	db           *sql.DB
	outboxRepo   OutboxRepository
	producer     kafkaInfra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	batchSize    int
	logger       *zap.Logger
}

func NewProcessor(
	db *sql.DB,
	outboxRepo OutboxRepository,
	producer kafkaInfra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:           db,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		batchSize:    10,
		logger:       logger,
	}
}

// Start blocks until ctx is cancelled, polling on every tick.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor",
		zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopping.")
			return
		case <-ticker.C:
			p.processOutboxMessages(ctx)
		}
	}
}

func (p *Processor) processOutboxMessages(ctx context.Context) {
	dbQueryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	messages, err := p.outboxRepo.GetPendingMessages(dbQueryCtx, p.db, p.batchSize)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		p.logger.Error("Failed to get pending outbox messages", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}

	p.logger.Debug("Found pending outbox messages", zap.Int("count", len(messages)))

	for _, msg := range messages {
		tx, err := p.db.BeginTx(ctx, nil)
		if err != nil {
			p.logger.Error("Failed to begin transaction for outbox message",
				zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		if err := p.producer.Produce(ctx, msg.ID, msg.Payload); err != nil {
			p.logger.Error("Failed to publish outbox message",
				zap.String("message_id", msg.ID), zap.Error(err))
			tx.Rollback()
			continue
		}

		if err := p.outboxRepo.UpdateMessageStatusTx(ctx, tx, msg.ID, domain.OutboxStatusSent); err != nil {
			p.logger.Error("Failed to mark outbox message as sent",
				zap.String("message_id", msg.ID), zap.Error(err))
			tx.Rollback()
			continue
		}

		if err := tx.Commit(); err != nil {
			p.logger.Error("Failed to commit outbox message update",
				zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		p.logger.Info("Outbox message published",
			zap.String("message_id", msg.ID),
			zap.Int64("payment_id", msg.PaymentID))
	}
}

// PreparePaymentStatusPayload serializes the event written alongside a
// status change, carrying the status the payment is transitioning to.
func PreparePaymentStatusPayload(payment *domain.Payment, status domain.PaymentStatus, eventTime time.Time) ([]byte, error) {
	evt := event.PaymentStatusEvent{
		EventID:   util.GenerateUUID(),
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		Amount:    payment.Amount,
		Kind:      string(payment.Kind),
		Status:    string(status),
		Timestamp: eventTime,
	}
	return json.Marshal(evt)
}
