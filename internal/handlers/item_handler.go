package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/barcode"
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

const (
	defaultLimit = 50
	maxLimit     = 100
)

// ItemHandler serves the item CRUD and query endpoints
type ItemHandler struct {
	logger     *zap.Logger
	config     *config.Config
	items      repository.ItemRepository
	activities repository.ActivityRepository
	cache      cache.Cache
	eventBus   events.EventPublisher
}

// NewItemHandler creates a new item handler
func NewItemHandler(
	logger *zap.Logger,
	cfg *config.Config,
	items repository.ItemRepository,
	activities repository.ActivityRepository,
	itemCache cache.Cache,
	eventBus events.EventPublisher,
) *ItemHandler {
	return &ItemHandler{
		logger:     logger,
		config:     cfg,
		items:      items,
		activities: activities,
		cache:      itemCache,
		eventBus:   eventBus,
	}
}

// CreateItem handles POST /api/v1/items
// @Summary      Create a new item
// @Description  Creates an item owned by the authenticated user. The barcode must be unique across all users; omit it to have one generated.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateItemRequest  true  "Item creation request"
// @Success      201      {object}  models.Item
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Failure      409      {object}  errors.StandardError  "Duplicate barcode"
// @Router       /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create item request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	if req.LowStockThreshold != nil && *req.LowStockThreshold < 0 {
		c.Error(errors.NewValidationError("low stock threshold must be >= 0", "low_stock_threshold"))
		return
	}

	item := &models.Item{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Distributor:       req.Distributor,
		Unit:              req.Unit,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		PurchasePrice:     req.PurchasePrice,
		SellPrice:         req.SellPrice,
		Barcode:           req.Barcode,
	}
	if item.Barcode == "" {
		item.Barcode = barcode.Generate()
	}

	if err := h.items.Create(c.Request.Context(), item); err != nil {
		if err == repository.ErrDuplicateBarcode {
			c.Error(errors.NewConflict("barcode already exists", fmt.Sprintf("Barcode: %s", item.Barcode)))
			return
		}
		h.logger.Error("Failed to create item", zap.Error(err))
		c.Error(errors.NewStoreFailure("create item", err))
		return
	}

	h.recordActivity(c, userID, models.ActivityItemCreated,
		fmt.Sprintf("created item %q", item.Title), item.ID, "item",
		map[string]interface{}{"title": item.Title, "stock": item.Stock})

	h.publishEvent(c, events.ItemCreatedEvent{
		ItemID:     item.ID,
		UserID:     userID,
		Title:      item.Title,
		Barcode:    item.Barcode,
		Stock:      item.Stock,
		OccurredAt: item.CreatedAt,
	})
	h.invalidateItemCache(c, userID)

	h.logger.Info("Item created",
		zap.String("item_id", item.ID),
		zap.String("user_id", userID),
	)
	c.JSON(http.StatusCreated, item)
}

// GetItem handles GET /api/v1/items/:id
// @Summary      Get one item
// @Description  Returns the item when it belongs to the authenticated user.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  models.Item
// @Failure      401  {object}  errors.StandardError
// @Failure      403  {object}  errors.StandardError  "Item belongs to another user"
// @Failure      404  {object}  errors.StandardError
// @Router       /items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	item, ok := h.ownedItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem handles PUT /api/v1/items/:id
// @Summary      Update an item
// @Description  Applies a partial update; omitted fields are left untouched. The barcode is immutable.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "Item ID"
// @Param        request  body      UpdateItemRequest  true  "Fields to update"
// @Success      200      {object}  models.Item
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Failure      403      {object}  errors.StandardError
// @Failure      404      {object}  errors.StandardError
// @Router       /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	item, ok := h.ownedItem(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid update item request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	update := models.ItemUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Distributor:       req.Distributor,
		Unit:              req.Unit,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		PurchasePrice:     req.PurchasePrice,
		SellPrice:         req.SellPrice,
	}
	if update.Empty() {
		c.Error(errors.NewValidationError("no fields to update", "body"))
		return
	}
	if update.Stock != nil && *update.Stock < 0 {
		c.Error(errors.NewValidationError("stock must be >= 0", "stock"))
		return
	}
	if update.Title != nil && *update.Title == "" {
		c.Error(errors.NewValidationError("title must not be empty", "title"))
		return
	}

	updated, err := h.items.Update(c.Request.Context(), item.ID, update)
	if err != nil {
		if err == repository.ErrItemNotFound {
			c.Error(errors.NewNotFound("item", item.ID))
			return
		}
		h.logger.Error("Failed to update item", zap.Error(err))
		c.Error(errors.NewStoreFailure("update item", err))
		return
	}

	h.recordActivity(c, item.UserID, models.ActivityItemUpdated,
		fmt.Sprintf("updated item %q", updated.Title), updated.ID, "item", nil)

	h.publishEvent(c, events.ItemUpdatedEvent{
		ItemID:     updated.ID,
		UserID:     updated.UserID,
		OccurredAt: updated.UpdatedAt,
	})
	h.invalidateItemCache(c, item.UserID)

	c.JSON(http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/items/:id
// @Summary      Delete an item
// @Description  Deletes the item. Stock transactions referencing it are kept as orphaned audit records.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  SuccessResponse
// @Failure      401  {object}  errors.StandardError
// @Failure      403  {object}  errors.StandardError
// @Failure      404  {object}  errors.StandardError
// @Router       /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	item, ok := h.ownedItem(c)
	if !ok {
		return
	}

	deleted, err := h.items.Delete(c.Request.Context(), item.ID)
	if err != nil {
		h.logger.Error("Failed to delete item", zap.Error(err))
		c.Error(errors.NewStoreFailure("delete item", err))
		return
	}
	if !deleted {
		c.Error(errors.NewNotFound("item", item.ID))
		return
	}

	h.recordActivity(c, item.UserID, models.ActivityItemDeleted,
		fmt.Sprintf("deleted item %q", item.Title), item.ID, "item", nil)

	h.publishEvent(c, events.ItemDeletedEvent{
		ItemID:     item.ID,
		UserID:     item.UserID,
		Barcode:    item.Barcode,
		OccurredAt: time.Now().UTC(),
	})
	h.invalidateItemCache(c, item.UserID)

	h.logger.Info("Item deleted",
		zap.String("item_id", item.ID),
		zap.String("user_id", item.UserID),
	)
	c.JSON(http.StatusOK, SuccessResponse{Message: "item deleted successfully"})
}

// ListItems handles GET /api/v1/items
// @Summary      List items across all users
// @Description  Administrative listing without ownership scoping.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Number of records to skip"    default(0)
// @Param        limit  query     int  false  "Maximum records to return"    default(50)
// @Success      200    {object}  ListResponse
// @Failure      401    {object}  errors.StandardError
// @Router       /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	skip, limit, ok := parsePaging(c)
	if !ok {
		return
	}

	items, err := h.items.ListAll(c.Request.Context(), skip, limit)
	if err != nil {
		h.logger.Error("Failed to list items", zap.Error(err))
		c.Error(errors.NewStoreFailure("list items", err))
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: items, Skip: skip, Limit: limit})
}

// ListMyItems handles GET /api/v1/items/my
// @Summary      List the authenticated user's items
// @Description  Query modes are mutually exclusive and applied in order of precedence: a non-blank `search` wins over filters, filters win over sorting. A blank search degrades to a plain listing.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        search       query     string   false  "Text search over title and description"
// @Param        category     query     string   false  "Filter: exact category"
// @Param        distributor  query     string   false  "Filter: exact distributor"
// @Param        min_stock    query     int      false  "Filter: minimum stock"
// @Param        max_stock    query     int      false  "Filter: maximum stock"
// @Param        min_price    query     number   false  "Filter: minimum sell price"
// @Param        max_price    query     number   false  "Filter: maximum sell price"
// @Param        sort_by      query     string   false  "Sort field: title, stock, category, distributor, purchase_price, sell_price, created_at, updated_at"
// @Param        order        query     string   false  "Sort order: asc or desc"  default(asc)
// @Param        skip         query     int      false  "Number of records to skip"  default(0)
// @Param        limit        query     int      false  "Maximum records to return"  default(50)
// @Success      200          {object}  ListResponse
// @Failure      400          {object}  errors.StandardError
// @Failure      401          {object}  errors.StandardError
// @Router       /items/my [get]
func (h *ItemHandler) ListMyItems(c *gin.Context) {
	userID := middleware.GetUserID(c)
	skip, limit, ok := parsePaging(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	// Search mode takes precedence over everything else. A blank or
	// whitespace-only term falls through to the plain listing inside the
	// repository.
	if search, supplied := c.GetQuery("search"); supplied {
		items, err := h.items.SearchByUser(ctx, userID, search, skip, limit)
		if err != nil {
			h.logger.Error("Failed to search items", zap.Error(err))
			c.Error(errors.NewStoreFailure("search items", err))
			return
		}
		c.JSON(http.StatusOK, ListResponse{Data: items, Skip: skip, Limit: limit})
		return
	}

	// Filter mode
	filter, ok := parseItemFilter(c)
	if !ok {
		return
	}
	if !filter.Empty() {
		items, err := h.items.FilterByUser(ctx, userID, filter, skip, limit)
		if err != nil {
			h.logger.Error("Failed to filter items", zap.Error(err))
			c.Error(errors.NewStoreFailure("filter items", err))
			return
		}
		c.JSON(http.StatusOK, ListResponse{Data: items, Skip: skip, Limit: limit})
		return
	}

	// Sorted or plain listing, cached when enabled
	sortBy := c.DefaultQuery("sort_by", "title")
	descending := c.DefaultQuery("order", "asc") == "desc"

	cacheKey := fmt.Sprintf("items:%s:list:%s:%v:%d:%d", userID, sortBy, descending, skip, limit)
	if h.cacheEnabled() {
		var cached []models.Item
		if err := cache.GetJSON(ctx, h.cache, cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, ListResponse{Data: cached, Skip: skip, Limit: limit})
			return
		}
	}

	items, err := h.items.ListByUserSorted(ctx, userID, sortBy, descending, skip, limit)
	if err != nil {
		h.logger.Error("Failed to list items", zap.Error(err))
		c.Error(errors.NewStoreFailure("list items", err))
		return
	}

	if h.cacheEnabled() {
		if err := cache.SetJSON(ctx, h.cache, cacheKey, items, cache.TTL(h.config.CacheTTL)); err != nil {
			h.logger.Warn("Failed to cache item listing", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, ListResponse{Data: items, Skip: skip, Limit: limit})
}

// CountMyItems handles GET /api/v1/items/my/count
// @Summary      Count the authenticated user's items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CountResponse
// @Failure      401  {object}  errors.StandardError
// @Router       /items/my/count [get]
func (h *ItemHandler) CountMyItems(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.items.CountByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to count items", zap.Error(err))
		c.Error(errors.NewStoreFailure("count items", err))
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// ListLowStock handles GET /api/v1/items/my/low-stock
// @Summary      List items at or below their low-stock threshold
// @Description  An item is low on stock when stock <= its own threshold, or the service default when none is set. Results are ordered by ascending stock so the most urgent items come first.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Item
// @Failure      401  {object}  errors.StandardError
// @Router       /items/my/low-stock [get]
func (h *ItemHandler) ListLowStock(c *gin.Context) {
	userID := middleware.GetUserID(c)

	items, err := h.items.ListLowStock(c.Request.Context(), userID, h.config.DefaultLowStockThreshold)
	if err != nil {
		h.logger.Error("Failed to list low stock items", zap.Error(err))
		c.Error(errors.NewStoreFailure("list low stock items", err))
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListCategories handles GET /api/v1/items/my/categories
// @Summary      List the distinct categories of the user's items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   string
// @Failure      401  {object}  errors.StandardError
// @Router       /items/my/categories [get]
func (h *ItemHandler) ListCategories(c *gin.Context) {
	h.listDistinct(c, "categories", h.items.CategoriesByUser)
}

// ListDistributors handles GET /api/v1/items/my/distributors
// @Summary      List the distinct distributors of the user's items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   string
// @Failure      401  {object}  errors.StandardError
// @Router       /items/my/distributors [get]
func (h *ItemHandler) ListDistributors(c *gin.Context) {
	h.listDistinct(c, "distributors", h.items.DistributorsByUser)
}

// GetItemByBarcode handles GET /api/v1/items/barcode/:barcode
// @Summary      Look up one of the user's items by barcode
// @Description  The barcode index is global, but lookups only return items owned by the authenticated user.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        barcode  path      string  true  "Barcode"
// @Success      200      {object}  models.Item
// @Failure      401      {object}  errors.StandardError
// @Failure      404      {object}  errors.StandardError
// @Router       /items/barcode/{barcode} [get]
func (h *ItemHandler) GetItemByBarcode(c *gin.Context) {
	userID := middleware.GetUserID(c)
	code := c.Param("barcode")

	item, err := h.items.FindByBarcode(c.Request.Context(), code)
	if err != nil {
		if err == repository.ErrItemNotFound {
			c.Error(errors.NewNotFound("item", code))
			return
		}
		h.logger.Error("Failed to find item by barcode", zap.Error(err))
		c.Error(errors.NewStoreFailure("find item by barcode", err))
		return
	}

	// Another user's barcode reads as not found, not forbidden: the
	// lookup must not leak that the code exists at all.
	if item.UserID != userID {
		c.Error(errors.NewNotFound("item", code))
		return
	}

	c.JSON(http.StatusOK, item)
}

// ownedItem loads the item from the path parameter and enforces ownership.
// On failure it attaches the error and reports false.
func (h *ItemHandler) ownedItem(c *gin.Context) (*models.Item, bool) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	item, err := h.items.FindByID(c.Request.Context(), id)
	if err != nil {
		if err == repository.ErrItemNotFound {
			c.Error(errors.NewNotFound("item", id))
			return nil, false
		}
		h.logger.Error("Failed to find item", zap.Error(err))
		c.Error(errors.NewStoreFailure("find item", err))
		return nil, false
	}

	if item.UserID != userID {
		h.logger.Warn("Cross-user item access denied",
			zap.String("item_id", id),
			zap.String("owner", item.UserID),
			zap.String("requester", userID),
		)
		c.Error(errors.NewPermissionDenied("item", id))
		return nil, false
	}

	return item, true
}

func (h *ItemHandler) listDistinct(c *gin.Context, what string, fetch func(ctx context.Context, userID string) ([]string, error)) {
	userID := middleware.GetUserID(c)
	ctx := c.Request.Context()

	cacheKey := fmt.Sprintf("items:%s:%s", userID, what)
	if h.cacheEnabled() {
		var cached []string
		if err := cache.GetJSON(ctx, h.cache, cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	values, err := fetch(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to list distinct values",
			zap.String("what", what),
			zap.Error(err),
		)
		c.Error(errors.NewStoreFailure("list "+what, err))
		return
	}

	if h.cacheEnabled() {
		if err := cache.SetJSON(ctx, h.cache, cacheKey, values, cache.TTL(h.config.CacheTTL)); err != nil {
			h.logger.Warn("Failed to cache distinct values", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, values)
}

func (h *ItemHandler) cacheEnabled() bool {
	return h.config.UseCache && h.cache != nil
}

// invalidateItemCache drops every cached read for the user after a write.
func (h *ItemHandler) invalidateItemCache(c *gin.Context, userID string) {
	if !h.cacheEnabled() {
		return
	}
	if err := h.cache.DeleteByPattern(c.Request.Context(), fmt.Sprintf("items:%s:*", userID)); err != nil {
		h.logger.Warn("Failed to invalidate item cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (h *ItemHandler) recordActivity(c *gin.Context, userID string, activityType models.ActivityType, description, entityID, entityType string, metadata map[string]interface{}) {
	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		EntityID:     entityID,
		EntityType:   entityType,
		Metadata:     metadata,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	}
	// The operation already succeeded; a failed trail write is logged, not
	// surfaced.
	if err := h.activities.Record(c.Request.Context(), entry); err != nil {
		h.logger.Warn("Failed to record activity",
			zap.String("activity_type", string(activityType)),
			zap.Error(err),
		)
	}
}

func (h *ItemHandler) publishEvent(c *gin.Context, event interface{}) {
	if h.eventBus == nil {
		return
	}
	if err := h.eventBus.Publish(c.Request.Context(), event); err != nil {
		h.logger.Error("Failed to publish event", zap.Error(err))
	}
}

// parsePaging reads skip/limit query parameters. On invalid input it attaches
// a validation error and reports false.
func parsePaging(c *gin.Context) (skip, limit int, ok bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.Error(errors.NewValidationError("skip must be a non-negative integer", "skip"))
		return 0, 0, false
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		c.Error(errors.NewValidationError("limit must be a positive integer", "limit"))
		return 0, 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return skip, limit, true
}

func parseItemFilter(c *gin.Context) (models.ItemFilter, bool) {
	filter := models.ItemFilter{
		Category:    c.Query("category"),
		Distributor: c.Query("distributor"),
	}

	var ok bool
	if filter.MinStock, ok = queryInt(c, "min_stock"); !ok {
		return filter, false
	}
	if filter.MaxStock, ok = queryInt(c, "max_stock"); !ok {
		return filter, false
	}
	if filter.MinPrice, ok = queryFloat(c, "min_price"); !ok {
		return filter, false
	}
	if filter.MaxPrice, ok = queryFloat(c, "max_price"); !ok {
		return filter, false
	}

	return filter, true
}

func queryInt(c *gin.Context, name string) (*int, bool) {
	raw, supplied := c.GetQuery(name)
	if !supplied {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.Error(errors.NewValidationError(name+" must be an integer", name))
		return nil, false
	}
	return &value, true
}

func queryFloat(c *gin.Context, name string) (*float64, bool) {
	raw, supplied := c.GetQuery(name)
	if !supplied {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.Error(errors.NewValidationError(name+" must be a number", name))
		return nil, false
	}
	return &value, true
}
