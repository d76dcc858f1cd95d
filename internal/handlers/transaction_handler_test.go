package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"inventory-service/internal/events"
	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_DecrementsStock(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 10})

	cost := 15.0
	w := api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID:     item.ID,
		Type:       "damage",
		Quantity:   4,
		Reason:     "dropped",
		CostImpact: &cost,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var txn models.StockTransaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.Equal(t, models.TransactionDamage, txn.Type)
	assert.Equal(t, 4, txn.Quantity)

	// Stock reflects the deduction
	w = api.request(t, "alice", "GET", "/api/v1/items/"+item.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 6, after.Stock)

	// An event was published for the committed transaction
	var recorded *events.StockTransactionRecordedEvent
	for _, event := range api.publisher.Events() {
		if e, ok := event.(events.StockTransactionRecordedEvent); ok {
			recorded = &e
		}
	}
	require.NotNil(t, recorded)
	assert.Equal(t, txn.ID, recorded.TransactionID)
}

func TestCreateTransaction_InvalidatesCachedListing(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 10})

	// Prime the cached listing with the pre-transaction stock
	var items []models.Item
	w := api.request(t, "alice", "GET", "/api/v1/items/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeList(t, w, &items)
	require.Len(t, items, 1)
	require.Equal(t, 10, items[0].Stock)

	w = api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: item.ID, Type: "loss", Quantity: 4, Reason: "lost",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The listing must reflect the decrement, not the cached stock
	w = api.request(t, "alice", "GET", "/api/v1/items/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeList(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Stock)
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 5})

	w := api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: item.ID, Type: "loss", Quantity: 6, Reason: "lost",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not enough stock. Available: 5, Requested: 6")

	// Nothing was written
	w = api.request(t, "alice", "GET", "/api/v1/items/"+item.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 5, after.Stock)

	w = api.request(t, "alice", "GET", "/api/v1/transactions/my/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestCreateTransaction_Validation(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 10})

	// Unknown type
	w := api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: item.ID, Type: "restock", Quantity: 1, Reason: "r",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Zero quantity fails binding
	w = api.request(t, "alice", "POST", "/api/v1/transactions", map[string]interface{}{
		"item_id": item.ID, "transaction_type": "loss", "quantity": 0, "reason": "r",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing item
	w = api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: "no-such-item", Type: "loss", Quantity: 1, Reason: "r",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Another user's item
	w = api.request(t, "bob", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: item.ID, Type: "loss", Quantity: 1, Reason: "r",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListAndCountTransactions(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 100})

	for _, transactionType := range []string{"loss", "loss", "damage"} {
		w := api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
			ItemID: item.ID, Type: transactionType, Quantity: 1, Reason: "r",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var transactions []models.StockTransaction

	w := api.request(t, "alice", "GET", "/api/v1/transactions/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeList(t, w, &transactions)
	assert.Len(t, transactions, 3)

	w = api.request(t, "alice", "GET", "/api/v1/transactions/my?type=loss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeList(t, w, &transactions)
	assert.Len(t, transactions, 2)

	w = api.request(t, "alice", "GET", "/api/v1/transactions/my?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.request(t, "alice", "GET", "/api/v1/transactions/my/count?type=damage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// Other users see nothing
	w = api.request(t, "bob", "GET", "/api/v1/transactions/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeList(t, w, &transactions)
	assert.Empty(t, transactions)
}

func TestTransactionStats(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 100})

	cost := 10.0
	seed := []CreateTransactionRequest{
		{ItemID: item.ID, Type: "loss", Quantity: 3, Reason: "r", CostImpact: &cost},
		{ItemID: item.ID, Type: "return", Quantity: 2, Reason: "r"},
	}
	for _, req := range seed {
		w := api.request(t, "alice", "POST", "/api/v1/transactions", req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := api.request(t, "alice", "GET", "/api/v1/transactions/my/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.TransactionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Loss.Quantity)
	assert.Equal(t, 10.0, stats.Loss.Cost)
	assert.Equal(t, 2, stats.Return.Quantity)
	assert.Equal(t, 5, stats.Total.Quantity)
	assert.Equal(t, 2, stats.Total.Count)
}

func TestUpdateTransaction(t *testing.T) {
	api := setupAPI(t)

	item := api.createItem(t, "alice", CreateItemRequest{Title: "Widget", Stock: 10})

	w := api.request(t, "alice", "POST", "/api/v1/transactions", CreateTransactionRequest{
		ItemID: item.ID, Type: "loss", Quantity: 2, Reason: "initial",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var txn models.StockTransaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))

	reason := "corrected"
	w = api.request(t, "alice", "PUT", "/api/v1/transactions/"+txn.ID, UpdateTransactionRequest{Reason: &reason})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.StockTransaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "corrected", updated.Reason)
	assert.Equal(t, 2, updated.Quantity)

	// Updating descriptive fields never touches stock
	w = api.request(t, "alice", "GET", "/api/v1/items/"+item.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 8, after.Stock)

	// Empty update is rejected
	w = api.request(t, "alice", "PUT", "/api/v1/transactions/"+txn.ID, UpdateTransactionRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Cross-user update is forbidden
	w = api.request(t, "bob", "PUT", "/api/v1/transactions/"+txn.ID, UpdateTransactionRequest{Reason: &reason})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
