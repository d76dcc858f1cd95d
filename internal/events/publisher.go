package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
	Close() error
}

// Item domain events

type ItemCreatedEvent struct {
	ItemID     string    `json:"item_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Barcode    string    `json:"barcode"`
	Stock      int       `json:"stock"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ItemUpdatedEvent struct {
	ItemID     string    `json:"item_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ItemDeletedEvent struct {
	ItemID     string    `json:"item_id"`
	UserID     string    `json:"user_id"`
	Barcode    string    `json:"barcode"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StockTransactionRecordedEvent is emitted after a loss/damage/return
// transaction has been committed and the item's stock decremented.
type StockTransactionRecordedEvent struct {
	TransactionID   string    `json:"transaction_id"`
	ItemID          string    `json:"item_id"`
	UserID          string    `json:"user_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// InMemoryEventPublisher records events in process. Used when no broker is
// configured, and by tests to observe what was published.
type InMemoryEventPublisher struct {
	logger *zap.Logger

	mu     sync.Mutex
	events []interface{}
}

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger: logger,
		events: make([]interface{}, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.logger.Debug("Event published (in-memory)", zap.Any("event", event))
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]interface{}, len(p.events))
	copy(snapshot, p.events)
	return snapshot
}
