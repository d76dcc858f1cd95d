package handlers

import (
	"fmt"
	"net/http"

	"inventory-service/internal/cache"
	"inventory-service/internal/config"
	"inventory-service/internal/events"
	"inventory-service/internal/models"
	"inventory-service/internal/repository"
	"inventory-service/pkg/errors"
	"inventory-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransactionHandler serves the stock transaction endpoints
type TransactionHandler struct {
	logger       *zap.Logger
	config       *config.Config
	transactions repository.TransactionRepository
	items        repository.ItemRepository
	activities   repository.ActivityRepository
	cache        cache.Cache
	eventBus     events.EventPublisher
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	logger *zap.Logger,
	cfg *config.Config,
	transactions repository.TransactionRepository,
	items repository.ItemRepository,
	activities repository.ActivityRepository,
	itemCache cache.Cache,
	eventBus events.EventPublisher,
) *TransactionHandler {
	return &TransactionHandler{
		logger:       logger,
		config:       cfg,
		transactions: transactions,
		items:        items,
		activities:   activities,
		cache:        itemCache,
		eventBus:     eventBus,
	}
}

// CreateTransaction handles POST /api/v1/transactions
// @Summary      Record a stock transaction
// @Description  Records a loss, damage or return transaction against one of the user's items and deducts its quantity from the item's stock. The record and the decrement happen as one unit: when stock is insufficient, nothing is written and the response names the available vs. requested quantities.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateTransactionRequest  true  "Transaction request"
// @Success      201      {object}  models.StockTransaction
// @Failure      400      {object}  errors.StandardError  "Invalid type, quantity, or insufficient stock"
// @Failure      401      {object}  errors.StandardError
// @Failure      403      {object}  errors.StandardError  "Item belongs to another user"
// @Failure      404      {object}  errors.StandardError
// @Router       /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create transaction request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	transactionType := models.TransactionType(req.Type)
	if !transactionType.Valid() {
		c.Error(errors.NewValidationError(
			fmt.Sprintf("unknown transaction type %q, expected loss, damage or return", req.Type),
			"transaction_type"))
		return
	}

	// Ownership is checked up front; the conditional decrement below still
	// protects against concurrent transactions racing on the same item.
	item, err := h.items.FindByID(c.Request.Context(), req.ItemID)
	if err != nil {
		if err == repository.ErrItemNotFound {
			c.Error(errors.NewNotFound("item", req.ItemID))
			return
		}
		h.logger.Error("Failed to find item", zap.Error(err))
		c.Error(errors.NewStoreFailure("find item", err))
		return
	}
	if item.UserID != userID {
		c.Error(errors.NewPermissionDenied("item", req.ItemID))
		return
	}

	txn := &models.StockTransaction{
		ItemID:          req.ItemID,
		UserID:          userID,
		Type:            transactionType,
		Quantity:        req.Quantity,
		Reason:          req.Reason,
		Notes:           req.Notes,
		CostImpact:      req.CostImpact,
		ReferenceNumber: req.ReferenceNumber,
	}

	if err := h.transactions.Create(c.Request.Context(), txn); err != nil {
		if err == repository.ErrItemNotFound {
			c.Error(errors.NewNotFound("item", req.ItemID))
			return
		}
		if stockErr, ok := err.(*repository.InsufficientStockError); ok {
			c.Error(errors.NewInsufficientStock(stockErr.Available, stockErr.Requested))
			return
		}
		h.logger.Error("Failed to create transaction", zap.Error(err))
		c.Error(errors.NewStoreFailure("create transaction", err))
		return
	}

	// The decrement changed the item's stock; cached item reads must not
	// keep serving the pre-transaction value.
	h.invalidateItemCache(c, userID)

	h.recordActivity(c, userID,
		fmt.Sprintf("recorded %s of %d x %q", txn.Type, txn.Quantity, item.Title),
		txn.ID,
		map[string]interface{}{
			"item_id":          txn.ItemID,
			"transaction_type": string(txn.Type),
			"quantity":         txn.Quantity,
		})

	if h.eventBus != nil {
		event := events.StockTransactionRecordedEvent{
			TransactionID:   txn.ID,
			ItemID:          txn.ItemID,
			UserID:          userID,
			TransactionType: string(txn.Type),
			Quantity:        txn.Quantity,
			OccurredAt:      txn.CreatedAt,
		}
		if err := h.eventBus.Publish(c.Request.Context(), event); err != nil {
			h.logger.Error("Failed to publish event", zap.Error(err))
		}
	}

	h.logger.Info("Transaction recorded",
		zap.String("transaction_id", txn.ID),
		zap.String("item_id", txn.ItemID),
		zap.String("type", string(txn.Type)),
		zap.Int("quantity", txn.Quantity),
	)
	c.JSON(http.StatusCreated, txn)
}

// ListMyTransactions handles GET /api/v1/transactions/my
// @Summary      List the user's stock transactions
// @Description  Newest first. Optionally narrowed by transaction type and/or item.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        type     query     string  false  "Filter: transaction type (loss, damage, return)"
// @Param        item_id  query     string  false  "Filter: item ID"
// @Param        skip     query     int     false  "Number of records to skip"  default(0)
// @Param        limit    query     int     false  "Maximum records to return"  default(50)
// @Success      200      {object}  ListResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Router       /transactions/my [get]
func (h *TransactionHandler) ListMyTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	skip, limit, ok := parsePaging(c)
	if !ok {
		return
	}
	filter, ok := parseTransactionFilter(c)
	if !ok {
		return
	}

	transactions, err := h.transactions.ListByUser(c.Request.Context(), userID, filter, skip, limit)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		c.Error(errors.NewStoreFailure("list transactions", err))
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: transactions, Skip: skip, Limit: limit})
}

// CountMyTransactions handles GET /api/v1/transactions/my/count
// @Summary      Count the user's stock transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        type     query     string  false  "Filter: transaction type (loss, damage, return)"
// @Param        item_id  query     string  false  "Filter: item ID"
// @Success      200      {object}  CountResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Router       /transactions/my/count [get]
func (h *TransactionHandler) CountMyTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	filter, ok := parseTransactionFilter(c)
	if !ok {
		return
	}

	count, err := h.transactions.CountByUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Error("Failed to count transactions", zap.Error(err))
		c.Error(errors.NewStoreFailure("count transactions", err))
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// GetTransactionStats handles GET /api/v1/transactions/my/stats
// @Summary      Aggregate the user's transactions by type
// @Description  Returns quantity, cost impact and count per transaction type plus an overall total.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.TransactionStats
// @Failure      401  {object}  errors.StandardError
// @Router       /transactions/my/stats [get]
func (h *TransactionHandler) GetTransactionStats(c *gin.Context) {
	userID := middleware.GetUserID(c)

	stats, err := h.transactions.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to aggregate transaction stats", zap.Error(err))
		c.Error(errors.NewStoreFailure("aggregate transaction stats", err))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTransaction handles GET /api/v1/transactions/:id
// @Summary      Get one stock transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  models.StockTransaction
// @Failure      401  {object}  errors.StandardError
// @Failure      403  {object}  errors.StandardError
// @Failure      404  {object}  errors.StandardError
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txn, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, txn)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
// @Summary      Update a stock transaction's descriptive fields
// @Description  Only reason, notes, cost impact and reference number may change. Quantity and the item reference are immutable; correcting a quantity means recording a compensating transaction.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Transaction ID"
// @Param        request  body      UpdateTransactionRequest  true  "Fields to update"
// @Success      200      {object}  models.StockTransaction
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Failure      403      {object}  errors.StandardError
// @Failure      404      {object}  errors.StandardError
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	txn, ok := h.ownedTransaction(c)
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid update transaction request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	update := models.TransactionUpdate{
		Reason:          req.Reason,
		Notes:           req.Notes,
		CostImpact:      req.CostImpact,
		ReferenceNumber: req.ReferenceNumber,
	}
	if update.Empty() {
		c.Error(errors.NewValidationError("no fields to update", "body"))
		return
	}

	updated, err := h.transactions.Update(c.Request.Context(), txn.ID, update)
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			c.Error(errors.NewNotFound("transaction", txn.ID))
			return
		}
		h.logger.Error("Failed to update transaction", zap.Error(err))
		c.Error(errors.NewStoreFailure("update transaction", err))
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *TransactionHandler) ownedTransaction(c *gin.Context) (*models.StockTransaction, bool) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	txn, err := h.transactions.FindByID(c.Request.Context(), id)
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			c.Error(errors.NewNotFound("transaction", id))
			return nil, false
		}
		h.logger.Error("Failed to find transaction", zap.Error(err))
		c.Error(errors.NewStoreFailure("find transaction", err))
		return nil, false
	}

	if txn.UserID != userID {
		h.logger.Warn("Cross-user transaction access denied",
			zap.String("transaction_id", id),
			zap.String("owner", txn.UserID),
			zap.String("requester", userID),
		)
		c.Error(errors.NewPermissionDenied("transaction", id))
		return nil, false
	}

	return txn, true
}

func (h *TransactionHandler) invalidateItemCache(c *gin.Context, userID string) {
	if !h.config.UseCache || h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPattern(c.Request.Context(), fmt.Sprintf("items:%s:*", userID)); err != nil {
		h.logger.Warn("Failed to invalidate item cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (h *TransactionHandler) recordActivity(c *gin.Context, userID, description, entityID string, metadata map[string]interface{}) {
	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: models.ActivityStockTransaction,
		Description:  description,
		EntityID:     entityID,
		EntityType:   "transaction",
		Metadata:     metadata,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	}
	if err := h.activities.Record(c.Request.Context(), entry); err != nil {
		h.logger.Warn("Failed to record activity", zap.Error(err))
	}
}

func parseTransactionFilter(c *gin.Context) (models.TransactionFilter, bool) {
	filter := models.TransactionFilter{
		ItemID: c.Query("item_id"),
	}

	if raw, supplied := c.GetQuery("type"); supplied {
		transactionType := models.TransactionType(raw)
		if !transactionType.Valid() {
			c.Error(errors.NewValidationError(
				fmt.Sprintf("unknown transaction type %q, expected loss, damage or return", raw),
				"type"))
			return filter, false
		}
		filter.Type = transactionType
	}

	return filter, true
}
