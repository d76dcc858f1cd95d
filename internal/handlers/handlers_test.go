package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"inventory-service/internal/cache"
	"inventory-service/internal/config"
	"inventory-service/internal/database"
	"inventory-service/internal/events"
	"inventory-service/internal/models"
	"inventory-service/internal/repository"
	"inventory-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testUserHeader routes the request to a fake identity, standing in for the
// JWT middleware so handler tests exercise ownership without token plumbing.
const testUserHeader = "X-Test-User"

type testAPI struct {
	router       *gin.Engine
	items        repository.ItemRepository
	transactions repository.TransactionRepository
	activities   repository.ActivityRepository
	publisher    *events.InMemoryEventPublisher
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	cfg := &config.Config{
		DefaultLowStockThreshold: 10,
		UseCache:                 true,
		CacheTTL:                 300,
	}

	itemRepo := repository.NewSQLiteItemRepository(db)
	transactionRepo := repository.NewSQLiteTransactionRepository(db)
	activityRepo := repository.NewSQLiteActivityRepository(db)
	publisher := events.NewInMemoryEventPublisher(logger)
	itemCache := cache.NewInMemoryCache()

	itemHandler := NewItemHandler(logger, cfg, itemRepo, activityRepo, itemCache, publisher)
	transactionHandler := NewTransactionHandler(logger, cfg, transactionRepo, itemRepo, activityRepo, itemCache, publisher)
	activityHandler := NewActivityHandler(logger, activityRepo)
	exportHandler := NewExportHandler(logger, itemRepo, transactionRepo)

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader(testUserHeader); user != "" {
			c.Set(middleware.UserIDContextKey, user)
		}
		c.Next()
	})

	v1 := router.Group("/api/v1")
	items := v1.Group("/items")
	{
		items.POST("", itemHandler.CreateItem)
		items.GET("", itemHandler.ListItems)
		items.GET("/my", itemHandler.ListMyItems)
		items.GET("/my/count", itemHandler.CountMyItems)
		items.GET("/my/low-stock", itemHandler.ListLowStock)
		items.GET("/my/categories", itemHandler.ListCategories)
		items.GET("/my/distributors", itemHandler.ListDistributors)
		items.GET("/barcode/:barcode", itemHandler.GetItemByBarcode)
		items.GET("/:id", itemHandler.GetItem)
		items.PUT("/:id", itemHandler.UpdateItem)
		items.DELETE("/:id", itemHandler.DeleteItem)
	}
	transactions := v1.Group("/transactions")
	{
		transactions.POST("", transactionHandler.CreateTransaction)
		transactions.GET("/my", transactionHandler.ListMyTransactions)
		transactions.GET("/my/count", transactionHandler.CountMyTransactions)
		transactions.GET("/my/stats", transactionHandler.GetTransactionStats)
		transactions.GET("/:id", transactionHandler.GetTransaction)
		transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	}
	v1.GET("/activity/my", activityHandler.ListMyActivity)
	exportGroup := v1.Group("/export")
	{
		exportGroup.GET("/items", exportHandler.ExportItems)
		exportGroup.GET("/transactions", exportHandler.ExportTransactions)
	}

	return &testAPI{
		router:       router,
		items:        itemRepo,
		transactions: transactionRepo,
		activities:   activityRepo,
		publisher:    publisher,
	}
}

func (a *testAPI) request(t *testing.T, user, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(payload)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createItem(t *testing.T, user string, req CreateItemRequest) models.Item {
	t.Helper()
	w := a.request(t, user, "POST", "/api/v1/items", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	return item
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, dest))
}
