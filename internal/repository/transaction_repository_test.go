package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionFixture(t *testing.T) (*SQLiteItemRepository, *SQLiteTransactionRepository) {
	t.Helper()
	db := newTestDB(t)
	return NewSQLiteItemRepository(db), NewSQLiteTransactionRepository(db)
}

func TestTransactionRepository_CreateDecrementsStock(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 10, Barcode: "t-1"})

	txn := &models.StockTransaction{
		ItemID:   item.ID,
		UserID:   "alice",
		Type:     models.TransactionLoss,
		Quantity: 3,
		Reason:   "expired",
	}
	require.NoError(t, transactions.Create(ctx, txn))
	assert.NotEmpty(t, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())

	after, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, after.Stock)

	found, err := transactions.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionLoss, found.Type)
	assert.Equal(t, 3, found.Quantity)
	assert.Equal(t, "expired", found.Reason)
}

func TestTransactionRepository_ExactStockToZero(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 5, Barcode: "t-2"})

	err := transactions.Create(ctx, &models.StockTransaction{
		ItemID: item.ID, UserID: "alice", Type: models.TransactionDamage, Quantity: 5, Reason: "dropped",
	})
	require.NoError(t, err)

	after, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)
}

func TestTransactionRepository_InsufficientStock(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 5, Barcode: "t-3"})

	err := transactions.Create(ctx, &models.StockTransaction{
		ItemID: item.ID, UserID: "alice", Type: models.TransactionLoss, Quantity: 6, Reason: "lost",
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 6, stockErr.Requested)

	// Nothing written: stock untouched, no transaction row
	after, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)

	count, err := transactions.CountByUser(ctx, "alice", models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTransactionRepository_MissingItem(t *testing.T) {
	_, transactions := newTransactionFixture(t)

	err := transactions.Create(context.Background(), &models.StockTransaction{
		ItemID: "no-such-item", UserID: "alice", Type: models.TransactionLoss, Quantity: 1, Reason: "lost",
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

// Two concurrent transactions race for the same stock; the conditional
// decrement must let exactly one through.
func TestTransactionRepository_ConcurrentDecrement(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 10, Barcode: "t-4"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = transactions.Create(ctx, &models.StockTransaction{
				ItemID: item.ID, UserID: "alice", Type: models.TransactionLoss, Quantity: 6, Reason: "race",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 1, succeeded)

	after, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.Stock)
}

func TestTransactionRepository_ListNewestFirstWithFilters(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	first := seedItem(t, items, models.Item{UserID: "alice", Title: "First", Stock: 100, Barcode: "t-5"})
	second := seedItem(t, items, models.Item{UserID: "alice", Title: "Second", Stock: 100, Barcode: "t-6"})

	record := func(itemID string, transactionType models.TransactionType) {
		require.NoError(t, transactions.Create(ctx, &models.StockTransaction{
			ItemID: itemID, UserID: "alice", Type: transactionType, Quantity: 1, Reason: "r",
		}))
		// created_at carries second resolution in the store
		time.Sleep(1100 * time.Millisecond)
	}

	record(first.ID, models.TransactionLoss)
	record(first.ID, models.TransactionDamage)
	record(second.ID, models.TransactionReturn)

	all, err := transactions.ListByUser(ctx, "alice", models.TransactionFilter{}, 0, 50)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.TransactionReturn, all[0].Type)
	assert.Equal(t, models.TransactionLoss, all[2].Type)

	byType, err := transactions.ListByUser(ctx, "alice", models.TransactionFilter{Type: models.TransactionDamage}, 0, 50)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, first.ID, byType[0].ItemID)

	byItem, err := transactions.ListByUser(ctx, "alice", models.TransactionFilter{ItemID: first.ID}, 0, 50)
	require.NoError(t, err)
	assert.Len(t, byItem, 2)

	count, err := transactions.CountByUser(ctx, "alice", models.TransactionFilter{ItemID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTransactionRepository_UpdateMutableFieldsOnly(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 10, Barcode: "t-7"})

	txn := &models.StockTransaction{
		ItemID: item.ID, UserID: "alice", Type: models.TransactionLoss, Quantity: 2, Reason: "initial",
	}
	require.NoError(t, transactions.Create(ctx, txn))

	updated, err := transactions.Update(ctx, txn.ID, models.TransactionUpdate{
		Reason:     strPtr("corrected"),
		CostImpact: floatPtr(9.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "corrected", updated.Reason)
	require.NotNil(t, updated.CostImpact)
	assert.Equal(t, 9.5, *updated.CostImpact)
	// Quantity and item reference are immutable
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, item.ID, updated.ItemID)

	// The stock stays where the original transaction left it
	after, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, after.Stock)
}

func TestTransactionRepository_UpdateMissing(t *testing.T) {
	_, transactions := newTransactionFixture(t)

	_, err := transactions.Update(context.Background(), "no-such-id", models.TransactionUpdate{Reason: strPtr("x")})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionRepository_Stats(t *testing.T) {
	items, transactions := newTransactionFixture(t)
	ctx := context.Background()

	item := seedItem(t, items, models.Item{UserID: "alice", Title: "Widget", Stock: 100, Barcode: "t-8"})

	seed := []struct {
		transactionType models.TransactionType
		quantity        int
		cost            *float64
	}{
		{models.TransactionLoss, 3, floatPtr(30)},
		{models.TransactionLoss, 2, nil},
		{models.TransactionDamage, 4, floatPtr(12.5)},
	}
	for _, s := range seed {
		require.NoError(t, transactions.Create(ctx, &models.StockTransaction{
			ItemID: item.ID, UserID: "alice", Type: s.transactionType, Quantity: s.quantity,
			Reason: "r", CostImpact: s.cost,
		}))
	}

	stats, err := transactions.Stats(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Loss.Quantity)
	assert.Equal(t, 2, stats.Loss.Count)
	assert.Equal(t, 30.0, stats.Loss.Cost)

	assert.Equal(t, 4, stats.Damage.Quantity)
	assert.Equal(t, 1, stats.Damage.Count)
	assert.Equal(t, 12.5, stats.Damage.Cost)

	assert.Equal(t, models.TypeStats{}, stats.Return)

	assert.Equal(t, 9, stats.Total.Quantity)
	assert.Equal(t, 3, stats.Total.Count)
	assert.Equal(t, 42.5, stats.Total.Cost)

	// Another user sees empty stats
	empty, err := transactions.Stats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, &models.TransactionStats{}, empty)
}
