package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryEventPublisher_RecordsEvents(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())
	ctx := context.Background()

	created := ItemCreatedEvent{
		ItemID:     "item-1",
		UserID:     "alice",
		Title:      "Widget",
		Stock:      10,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, publisher.Publish(ctx, created))
	require.NoError(t, publisher.Publish(ctx, StockTransactionRecordedEvent{
		TransactionID:   "txn-1",
		ItemID:          "item-1",
		UserID:          "alice",
		TransactionType: "loss",
		Quantity:        2,
	}))

	events := publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, created, events[0])

	recorded, ok := events[1].(StockTransactionRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "loss", recorded.TransactionType)
}

func TestEventTypeAndPartitionKey(t *testing.T) {
	assert.Equal(t, "ItemCreated", eventType(ItemCreatedEvent{}))
	assert.Equal(t, "ItemUpdated", eventType(ItemUpdatedEvent{}))
	assert.Equal(t, "ItemDeleted", eventType(ItemDeletedEvent{}))
	assert.Equal(t, "StockTransactionRecorded", eventType(StockTransactionRecordedEvent{}))
	assert.Equal(t, "Unknown", eventType("not an event"))

	assert.Equal(t, "item-1", partitionKey(ItemUpdatedEvent{ItemID: "item-1"}))
	assert.Equal(t, "item-2", partitionKey(StockTransactionRecordedEvent{ItemID: "item-2"}))
	assert.Equal(t, "", partitionKey("not an event"))
}
