package kafka_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/domain/event"
	kafka_infra "github.com/JustJirka/P6PP/internal/infrastructure/kafka"
	"github.com/JustJirka/P6PP/internal/repository/notifications_repo"
)

// PaymentEventHandler records every consumed payment-status event in the
// notification log. Malformed payloads are logged and skipped so a poison
// message cannot wedge the partition.
func PaymentEventHandler(repo notifications_repo.NotificationLogRepository, logger *zap.Logger) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt event.PaymentStatusEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("Failed to unmarshal payment status event, skipping",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return nil
		}

		entry := &notifications_repo.NotificationLogEntry{
			EventID:    evt.EventID,
			PaymentID:  evt.PaymentID,
			UserID:     evt.UserID,
			Status:     evt.Status,
			ReceivedAt: time.Now(),
		}
		if err := repo.Record(ctx, entry); err != nil {
			logger.Error("Failed to record payment notification",
				zap.String("event_id", evt.EventID),
				zap.Error(err))
			return fmt.Errorf("failed to record notification for event %s: %w", evt.EventID, err)
		}

		logger.Info("Payment notification recorded",
			zap.String("event_id", evt.EventID),
			zap.Int64("payment_id", evt.PaymentID),
			zap.Int64("user_id", evt.UserID),
			zap.String("status", evt.Status))
		return nil
	}
}
