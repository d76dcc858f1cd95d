package export

import (
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsWorkbook(t *testing.T) {
	price := 12.99
	threshold := 5
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	items := []models.Item{
		{
			Title:             "Coffee Beans",
			Category:          "beverages",
			Unit:              "bag",
			Stock:             42,
			LowStockThreshold: &threshold,
			SellPrice:         &price,
			Barcode:           "7891234567895",
			CreatedAt:         created,
			UpdatedAt:         created,
		},
		{
			Title:   "Plain Item",
			Barcode: "code-2",
		},
	}

	workbook, err := ItemsWorkbook(items)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, itemHeaders, rows[0])
	assert.Equal(t, "Coffee Beans", rows[1][0])
	assert.Equal(t, "42", rows[1][5])
	assert.Equal(t, "5", rows[1][6])
	assert.Equal(t, "12.99", rows[1][8])
	assert.Equal(t, "7891234567895", rows[1][9])
	assert.Equal(t, "2024-03-01 10:30:00", rows[1][10])

	assert.Equal(t, "Plain Item", rows[2][0])
}

func TestItemsWorkbook_Empty(t *testing.T) {
	workbook, err := ItemsWorkbook(nil)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Items")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, itemHeaders, rows[0])
}

func TestTransactionsWorkbook(t *testing.T) {
	cost := 25.5
	created := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	transactions := []models.StockTransaction{
		{
			ItemID:          "item-1",
			Type:            models.TransactionLoss,
			Quantity:        3,
			Reason:          "expired",
			Notes:           "monthly audit",
			CostImpact:      &cost,
			ReferenceNumber: "AUD-2024-017",
			CreatedAt:       created,
		},
	}

	workbook, err := TransactionsWorkbook(transactions)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, transactionHeaders, rows[0])
	assert.Equal(t, "item-1", rows[1][0])
	assert.Equal(t, "loss", rows[1][1])
	assert.Equal(t, "3", rows[1][2])
	assert.Equal(t, "25.5", rows[1][5])
	assert.Equal(t, "AUD-2024-017", rows[1][6])
}
