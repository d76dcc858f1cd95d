package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory-service/internal/models"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateBarcode    = errors.New("barcode already exists")
)

// InsufficientStockError reports a transaction whose quantity exceeds the
// item's currently recorded stock. Available is the stock observed when the
// conditional decrement was rejected.
type InsufficientStockError struct {
	ItemID    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// ItemRepository defines the item store contract. Every user-scoped
// operation takes the owning user explicitly; there is no ambient tenant.
type ItemRepository interface {
	// ListAll lists items across all users (administrative use).
	ListAll(ctx context.Context, skip, limit int) ([]models.Item, error)
	// ListByUser lists one user's items without any ordering guarantee.
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]models.Item, error)
	// SearchByUser matches the term against title and description.
	SearchByUser(ctx context.Context, userID, term string, skip, limit int) ([]models.Item, error)
	// ListByUserSorted lists one user's items ordered by the named field.
	ListByUserSorted(ctx context.Context, userID, sortField string, descending bool, skip, limit int) ([]models.Item, error)
	// FilterByUser applies the AND-conjoined filter predicates.
	FilterByUser(ctx context.Context, userID string, filter models.ItemFilter, skip, limit int) ([]models.Item, error)
	// ListLowStock returns items at or below their effective threshold,
	// ordered by ascending stock.
	ListLowStock(ctx context.Context, userID string, defaultThreshold int) ([]models.Item, error)
	FindByID(ctx context.Context, id string) (*models.Item, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Item, error)
	// Create assigns identity and timestamps and persists the item.
	Create(ctx context.Context, item *models.Item) error
	// Update applies only the supplied fields and refreshes updated_at.
	Update(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error)
	// Delete returns false when no item with the given ID exists.
	Delete(ctx context.Context, id string) (bool, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// CategoriesByUser returns distinct non-empty categories.
	CategoriesByUser(ctx context.Context, userID string) ([]string, error)
	// DistributorsByUser returns distinct non-empty distributors.
	DistributorsByUser(ctx context.Context, userID string) ([]string, error)
}

// TransactionRepository defines the stock transaction store contract.
type TransactionRepository interface {
	// Create persists the transaction and decrements the item's stock as one
	// unit. It fails with ErrItemNotFound when the item is missing and with
	// *InsufficientStockError when quantity exceeds the recorded stock; in
	// both cases nothing is written.
	Create(ctx context.Context, txn *models.StockTransaction) error
	ListByUser(ctx context.Context, userID string, filter models.TransactionFilter, skip, limit int) ([]models.StockTransaction, error)
	CountByUser(ctx context.Context, userID string, filter models.TransactionFilter) (int, error)
	FindByID(ctx context.Context, id string) (*models.StockTransaction, error)
	// Update applies only the mutable fields (reason, notes, cost_impact,
	// reference_number); quantity and item reference never change.
	Update(ctx context.Context, id string, update models.TransactionUpdate) (*models.StockTransaction, error)
	// Stats aggregates per-type and overall quantity, cost impact and count.
	Stats(ctx context.Context, userID string) (*models.TransactionStats, error)
}

// ActivityRepository defines the append-only activity log contract.
type ActivityRepository interface {
	Record(ctx context.Context, entry *models.ActivityLog) error
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]models.ActivityLog, error)
}
