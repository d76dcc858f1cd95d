// Package export renders user data as spreadsheet workbooks.
package export

import (
	"fmt"

	"inventory-service/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet        = "Items"
	transactionsSheet = "Transactions"
)

var itemHeaders = []string{
	"Title", "Description", "Category", "Distributor", "Unit",
	"Stock", "Low Stock Threshold", "Purchase Price", "Sell Price",
	"Barcode", "Created At", "Updated At",
}

var transactionHeaders = []string{
	"Item ID", "Type", "Quantity", "Reason", "Notes",
	"Cost Impact", "Reference Number", "Created At",
}

// ItemsWorkbook builds an xlsx workbook with one row per item.
// The caller owns the returned file and must Close it.
func ItemsWorkbook(items []models.Item) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", itemsSheet)

	if err := writeHeaderRow(f, itemsSheet, itemHeaders); err != nil {
		return nil, err
	}

	for i, item := range items {
		row := []interface{}{
			item.Title,
			item.Description,
			item.Category,
			item.Distributor,
			item.Unit,
			item.Stock,
			floatOrBlankInt(item.LowStockThreshold),
			floatOrBlank(item.PurchasePrice),
			floatOrBlank(item.SellPrice),
			item.Barcode,
			item.CreatedAt.Format("2006-01-02 15:04:05"),
			item.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, itemsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// TransactionsWorkbook builds an xlsx workbook with one row per transaction.
func TransactionsWorkbook(transactions []models.StockTransaction) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", transactionsSheet)

	if err := writeHeaderRow(f, transactionsSheet, transactionHeaders); err != nil {
		return nil, err
	}

	for i, txn := range transactions {
		row := []interface{}{
			txn.ItemID,
			string(txn.Type),
			txn.Quantity,
			txn.Reason,
			txn.Notes,
			floatOrBlank(txn.CostImpact),
			txn.ReferenceNumber,
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, transactionsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to compute header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute row cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrBlankInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
