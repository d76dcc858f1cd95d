package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-service/internal/models"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const itemColumns = `id, user_id, title, description, category, distributor, unit,
	stock, low_stock_threshold, purchase_price, sell_price, barcode, created_at, updated_at`

// sortColumns maps caller-facing sort field names to item columns. Sort
// fields go into the ORDER BY clause, so they are mapped through this
// allow-list instead of being interpolated raw; unknown names fall back to
// title.
var sortColumns = map[string]string{
	"title":               "title",
	"description":         "description",
	"category":            "category",
	"distributor":         "distributor",
	"unit":                "unit",
	"stock":               "stock",
	"low_stock_threshold": "low_stock_threshold",
	"purchase_price":      "purchase_price",
	"sell_price":          "sell_price",
	"barcode":             "barcode",
	"created_at":          "created_at",
	"updated_at":          "updated_at",
}

// SQLiteItemRepository implements ItemRepository over the SQLite record store
type SQLiteItemRepository struct {
	db *sql.DB
}

// NewSQLiteItemRepository creates a new SQLite item repository
func NewSQLiteItemRepository(db *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

func (r *SQLiteItemRepository) ListAll(ctx context.Context, skip, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items LIMIT ? OFFSET ?`, itemColumns)
	return r.queryItems(ctx, query, limit, skip)
}

func (r *SQLiteItemRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE user_id = ? LIMIT ? OFFSET ?`, itemColumns)
	return r.queryItems(ctx, query, userID, limit, skip)
}

func (r *SQLiteItemRepository) SearchByUser(ctx context.Context, userID, term string, skip, limit int) ([]models.Item, error) {
	// Whitespace-only terms degrade to a plain user listing
	term = strings.TrimSpace(term)
	if term == "" {
		return r.ListByUser(ctx, userID, skip, limit)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM items
		WHERE user_id = ? AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')
		LIMIT ? OFFSET ?`, itemColumns)

	pattern := "%" + escapeLike(term) + "%"
	return r.queryItems(ctx, query, userID, pattern, pattern, limit, skip)
}

// escapeLike neutralizes LIKE metacharacters so a term like "100%" matches
// literally instead of as a wildcard.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *SQLiteItemRepository) ListByUserSorted(ctx context.Context, userID, sortField string, descending bool, skip, limit int) ([]models.Item, error) {
	column, ok := sortColumns[sortField]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM items
		WHERE user_id = ?
		ORDER BY %s %s
		LIMIT ? OFFSET ?`, itemColumns, column, direction)

	return r.queryItems(ctx, query, userID, limit, skip)
}

func (r *SQLiteItemRepository) FilterByUser(ctx context.Context, userID string, filter models.ItemFilter, skip, limit int) ([]models.Item, error) {
	// Build the conjoined predicate list
	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Distributor != "" {
		conditions = append(conditions, "distributor = ?")
		args = append(args, filter.Distributor)
	}
	if filter.MinStock != nil {
		conditions = append(conditions, "stock >= ?")
		args = append(args, *filter.MinStock)
	}
	if filter.MaxStock != nil {
		conditions = append(conditions, "stock <= ?")
		args = append(args, *filter.MaxStock)
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "sell_price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "sell_price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	query := fmt.Sprintf(`SELECT %s FROM items WHERE %s LIMIT ? OFFSET ?`,
		itemColumns, strings.Join(conditions, " AND "))
	args = append(args, limit, skip)

	return r.queryItems(ctx, query, args...)
}

func (r *SQLiteItemRepository) ListLowStock(ctx context.Context, userID string, defaultThreshold int) ([]models.Item, error) {
	// Per-row effective threshold: the item's own threshold when set,
	// otherwise the supplied default. Lowest stock first.
	query := fmt.Sprintf(`
		SELECT %s FROM items
		WHERE user_id = ? AND stock <= COALESCE(low_stock_threshold, ?)
		ORDER BY stock ASC`, itemColumns)

	return r.queryItems(ctx, query, userID, defaultThreshold)
}

func (r *SQLiteItemRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = ?`, itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return item, nil
}

func (r *SQLiteItemRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE barcode = ?`, itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item by barcode: %w", err)
	}
	return item, nil
}

func (r *SQLiteItemRepository) Create(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO items (id, user_id, title, description, category, distributor, unit,
			stock, low_stock_threshold, purchase_price, sell_price, barcode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Title, item.Description, item.Category,
		item.Distributor, item.Unit, item.Stock,
		nullableInt(item.LowStockThreshold),
		nullableFloat(item.PurchasePrice), nullableFloat(item.SellPrice),
		item.Barcode,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		// The unique barcode index rejects duplicates; insert-then-catch
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateBarcode
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *SQLiteItemRepository) Update(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error) {
	assignments := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)

	appendSet := func(column string, value interface{}) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Category != nil {
		appendSet("category", *update.Category)
	}
	if update.Distributor != nil {
		appendSet("distributor", *update.Distributor)
	}
	if update.Unit != nil {
		appendSet("unit", *update.Unit)
	}
	if update.Stock != nil {
		appendSet("stock", *update.Stock)
	}
	if update.LowStockThreshold != nil {
		appendSet("low_stock_threshold", *update.LowStockThreshold)
	}
	if update.PurchasePrice != nil {
		appendSet("purchase_price", *update.PurchasePrice)
	}
	if update.SellPrice != nil {
		appendSet("sell_price", *update.SellPrice)
	}

	// The update timestamp refreshes even when only one field changed
	appendSet("updated_at", time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE items SET %s WHERE id = ?`, strings.Join(assignments, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrItemNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *SQLiteItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *SQLiteItemRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *SQLiteItemRepository) CategoriesByUser(ctx context.Context, userID string) ([]string, error) {
	return r.distinctValues(ctx, "category", userID)
}

func (r *SQLiteItemRepository) DistributorsByUser(ctx context.Context, userID string) ([]string, error) {
	return r.distinctValues(ctx, "distributor", userID)
}

// distinctValues returns distinct non-empty values of a column for one user
func (r *SQLiteItemRepository) distinctValues(ctx context.Context, column, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM items
		WHERE user_id = ? AND %s != ''
		ORDER BY %s`, column, column, column)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s values: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", column, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s values: %w", column, err)
	}

	return values, nil
}

func (r *SQLiteItemRepository) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var threshold sql.NullInt64
	var purchasePrice, sellPrice sql.NullFloat64
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Description,
		&item.Category, &item.Distributor, &item.Unit,
		&item.Stock, &threshold, &purchasePrice, &sellPrice,
		&item.Barcode, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	if threshold.Valid {
		value := int(threshold.Int64)
		item.LowStockThreshold = &value
	}
	if purchasePrice.Valid {
		item.PurchasePrice = &purchasePrice.Float64
	}
	if sellPrice.Valid {
		item.SellPrice = &sellPrice.Float64
	}

	// Parse timestamps
	if createdAt, err := time.Parse(time.RFC3339, createdAtStr); err == nil {
		item.CreatedAt = createdAt
	}
	if updatedAt, err := time.Parse(time.RFC3339, updatedAtStr); err == nil {
		item.UpdatedAt = updatedAt
	}

	return &item, nil
}

func nullableInt(value *int) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
