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
)

const transactionColumns = `id, item_id, user_id, transaction_type, quantity,
	reason, notes, cost_impact, reference_number, created_at, updated_at`

// SQLiteTransactionRepository implements TransactionRepository over the
// SQLite record store.
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// NewSQLiteTransactionRepository creates a new SQLite transaction repository
func NewSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}

// Create persists the transaction record and decrements the item's stock in
// one SQL transaction. The decrement is conditional (stock >= quantity), so
// concurrent transactions against the same item serialize at the store: a
// request that would drive stock negative is rejected instead of applied
// against a stale read.
func (r *SQLiteTransactionRepository) Create(ctx context.Context, txn *models.StockTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	result, err := tx.ExecContext(ctx, `
		UPDATE items
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?`,
		txn.Quantity, now.Format(time.RFC3339), txn.ItemID, txn.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing item from insufficient stock
		var available int
		err := tx.QueryRowContext(ctx, `SELECT stock FROM items WHERE id = ?`, txn.ItemID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read item stock: %w", err)
		}
		return &InsufficientStockError{
			ItemID:    txn.ItemID,
			Available: available,
			Requested: txn.Quantity,
		}
	}

	txn.ID = uuid.New().String()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_transactions (id, item_id, user_id, transaction_type, quantity,
			reason, notes, cost_impact, reference_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.ItemID, txn.UserID, string(txn.Type), txn.Quantity,
		txn.Reason, txn.Notes, nullableFloat(txn.CostImpact), txn.ReferenceNumber,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteTransactionRepository) ListByUser(ctx context.Context, userID string, filter models.TransactionFilter, skip, limit int) ([]models.StockTransaction, error) {
	conditions, args := transactionConditions(userID, filter)

	query := fmt.Sprintf(`
		SELECT %s FROM stock_transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, transactionColumns, strings.Join(conditions, " AND "))
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]models.StockTransaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (r *SQLiteTransactionRepository) CountByUser(ctx context.Context, userID string, filter models.TransactionFilter) (int, error) {
	conditions, args := transactionConditions(userID, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM stock_transactions WHERE %s`,
		strings.Join(conditions, " AND "))

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *SQLiteTransactionRepository) FindByID(ctx context.Context, id string) (*models.StockTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_transactions WHERE id = ?`, transactionColumns)

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID: %w", err)
	}
	return txn, nil
}

func (r *SQLiteTransactionRepository) Update(ctx context.Context, id string, update models.TransactionUpdate) (*models.StockTransaction, error) {
	assignments := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if update.Reason != nil {
		assignments = append(assignments, "reason = ?")
		args = append(args, *update.Reason)
	}
	if update.Notes != nil {
		assignments = append(assignments, "notes = ?")
		args = append(args, *update.Notes)
	}
	if update.CostImpact != nil {
		assignments = append(assignments, "cost_impact = ?")
		args = append(args, *update.CostImpact)
	}
	if update.ReferenceNumber != nil {
		assignments = append(assignments, "reference_number = ?")
		args = append(args, *update.ReferenceNumber)
	}

	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE stock_transactions SET %s WHERE id = ?`,
		strings.Join(assignments, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTransactionNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *SQLiteTransactionRepository) Stats(ctx context.Context, userID string) (*models.TransactionStats, error) {
	query := `
		SELECT transaction_type, SUM(quantity), SUM(COALESCE(cost_impact, 0)), COUNT(*)
		FROM stock_transactions
		WHERE user_id = ?
		GROUP BY transaction_type
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transaction stats: %w", err)
	}
	defer rows.Close()

	stats := &models.TransactionStats{}
	for rows.Next() {
		var transactionType string
		var typeStats models.TypeStats
		if err := rows.Scan(&transactionType, &typeStats.Quantity, &typeStats.Cost, &typeStats.Count); err != nil {
			return nil, fmt.Errorf("failed to scan transaction stats: %w", err)
		}

		switch models.TransactionType(transactionType) {
		case models.TransactionLoss:
			stats.Loss = typeStats
		case models.TransactionDamage:
			stats.Damage = typeStats
		case models.TransactionReturn:
			stats.Return = typeStats
		default:
			continue
		}

		stats.Total.Quantity += typeStats.Quantity
		stats.Total.Cost += typeStats.Cost
		stats.Total.Count += typeStats.Count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction stats: %w", err)
	}

	return stats, nil
}

func transactionConditions(userID string, filter models.TransactionFilter) ([]string, []interface{}) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.Type != "" {
		conditions = append(conditions, "transaction_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.ItemID != "" {
		conditions = append(conditions, "item_id = ?")
		args = append(args, filter.ItemID)
	}

	return conditions, args
}

func scanTransaction(row rowScanner) (*models.StockTransaction, error) {
	var txn models.StockTransaction
	var transactionType string
	var costImpact sql.NullFloat64
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&txn.ID, &txn.ItemID, &txn.UserID, &transactionType, &txn.Quantity,
		&txn.Reason, &txn.Notes, &costImpact, &txn.ReferenceNumber,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = models.TransactionType(transactionType)
	if costImpact.Valid {
		txn.CostImpact = &costImpact.Float64
	}

	// Parse timestamps
	if createdAt, err := time.Parse(time.RFC3339, createdAtStr); err == nil {
		txn.CreatedAt = createdAt
	}
	if updatedAt, err := time.Parse(time.RFC3339, updatedAtStr); err == nil {
		txn.UpdatedAt = updatedAt
	}

	return &txn, nil
}
