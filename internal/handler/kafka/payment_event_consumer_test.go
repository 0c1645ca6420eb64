package kafka_handler

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/repository/notifications_repo"
)

type fakeNotificationLog struct {
	entries []*notifications_repo.NotificationLogEntry
	err     error
}

func (f *fakeNotificationLog) Record(ctx context.Context, entry *notifications_repo.NotificationLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func TestPaymentEventHandlerRecordsEvent(t *testing.T) {
	repo := &fakeNotificationLog{}
	handler := PaymentEventHandler(repo, zap.NewNop())

	msg := kafka.Message{
		Value: []byte(`{"event_id":"e9b1c2d3-0000-0000-0000-000000000001","payment_id":42,"user_id":1,"amount":"50","kind":"reservation","status":"confirm","timestamp":"2025-03-10T12:00:00Z"}`),
	}
	require.NoError(t, handler(context.Background(), msg))

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "e9b1c2d3-0000-0000-0000-000000000001", entry.EventID)
	assert.Equal(t, int64(42), entry.PaymentID)
	assert.Equal(t, int64(1), entry.UserID)
	assert.Equal(t, "confirm", entry.Status)
	assert.False(t, entry.ReceivedAt.IsZero())
}

func TestPaymentEventHandlerSkipsMalformedPayload(t *testing.T) {
	repo := &fakeNotificationLog{}
	handler := PaymentEventHandler(repo, zap.NewNop())

	// A poison message must not return an error, or the consumer would
	// never commit past it.
	msg := kafka.Message{Value: []byte(`not json`)}
	require.NoError(t, handler(context.Background(), msg))
	assert.Empty(t, repo.entries)
}

func TestPaymentEventHandlerPropagatesStoreError(t *testing.T) {
	repo := &fakeNotificationLog{err: errors.New("connection reset")}
	handler := PaymentEventHandler(repo, zap.NewNop())

	msg := kafka.Message{
		Value: []byte(`{"event_id":"e9b1c2d3-0000-0000-0000-000000000002","payment_id":1,"user_id":1,"status":"confirm"}`),
	}
	err := handler(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
