package handlers

import (
	"fmt"
	"net/http"
	"time"

	"inventory-service/internal/export"
	"inventory-service/internal/models"
	"inventory-service/internal/repository"
	"inventory-service/pkg/errors"
	"inventory-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportPageSize  = 500
)

// ExportHandler serves spreadsheet downloads of a user's data
type ExportHandler struct {
	logger       *zap.Logger
	items        repository.ItemRepository
	transactions repository.TransactionRepository
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *zap.Logger, items repository.ItemRepository, transactions repository.TransactionRepository) *ExportHandler {
	return &ExportHandler{
		logger:       logger,
		items:        items,
		transactions: transactions,
	}
}

// ExportItems handles GET /api/v1/export/items
// @Summary      Download the user's items as a spreadsheet
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Tags         export
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      401  {object}  errors.StandardError
// @Router       /export/items [get]
func (h *ExportHandler) ExportItems(c *gin.Context) {
	userID := middleware.GetUserID(c)

	items := make([]models.Item, 0)
	for skip := 0; ; skip += exportPageSize {
		page, err := h.items.ListByUserSorted(c.Request.Context(), userID, "title", false, skip, exportPageSize)
		if err != nil {
			h.logger.Error("Failed to load items for export", zap.Error(err))
			c.Error(errors.NewStoreFailure("export items", err))
			return
		}
		items = append(items, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	workbook, err := export.ItemsWorkbook(items)
	if err != nil {
		h.logger.Error("Failed to build items workbook", zap.Error(err))
		c.Error(errors.NewInternalError("failed to build spreadsheet", err))
		return
	}
	defer workbook.Close()

	h.sendWorkbook(c, workbook, "items")
}

// ExportTransactions handles GET /api/v1/export/transactions
// @Summary      Download the user's stock transactions as a spreadsheet
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Tags         export
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      401  {object}  errors.StandardError
// @Router       /export/transactions [get]
func (h *ExportHandler) ExportTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)

	transactions := make([]models.StockTransaction, 0)
	for skip := 0; ; skip += exportPageSize {
		page, err := h.transactions.ListByUser(c.Request.Context(), userID, models.TransactionFilter{}, skip, exportPageSize)
		if err != nil {
			h.logger.Error("Failed to load transactions for export", zap.Error(err))
			c.Error(errors.NewStoreFailure("export transactions", err))
			return
		}
		transactions = append(transactions, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	workbook, err := export.TransactionsWorkbook(transactions)
	if err != nil {
		h.logger.Error("Failed to build transactions workbook", zap.Error(err))
		c.Error(errors.NewInternalError("failed to build spreadsheet", err))
		return
	}
	defer workbook.Close()

	h.sendWorkbook(c, workbook, "transactions")
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, workbook *excelize.File, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if _, err := workbook.WriteTo(c.Writer); err != nil {
		// Headers are already out; all we can do is log
		h.logger.Error("Failed to stream workbook",
			zap.String("filename", filename),
			zap.Error(err),
		)
	}
}
