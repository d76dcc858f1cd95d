package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite record store and initializes the schema.
// WAL mode allows concurrent readers while writes serialize; the busy
// timeout keeps concurrent writers queued instead of failing fast.
func New(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=0")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the database schema
func initSchema(db *sql.DB) error {
	schema := `
	-- Items table: per-user product records
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		distributor TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		low_stock_threshold INTEGER,
		purchase_price REAL,
		sell_price REAL,
		barcode TEXT UNIQUE NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(stock >= 0)
	);

	-- Stock transactions table: loss/damage/return events.
	-- No foreign key on item_id: deleting an item leaves its transactions
	-- in place as orphaned audit records.
	CREATE TABLE IF NOT EXISTS stock_transactions (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		transaction_type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		reason TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		cost_impact REAL,
		reference_number TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(quantity > 0),
		CHECK(transaction_type IN ('loss', 'damage', 'return'))
	);

	-- Activity logs table: append-only user action trail
	CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		description TEXT NOT NULL,
		entity_id TEXT NOT NULL DEFAULT '',
		entity_type TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_items_user_id ON items(user_id);
	CREATE INDEX IF NOT EXISTS idx_items_user_category ON items(user_id, category);
	CREATE INDEX IF NOT EXISTS idx_items_user_distributor ON items(user_id, distributor);
	CREATE INDEX IF NOT EXISTS idx_items_user_stock ON items(user_id, stock);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON stock_transactions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_item_id ON stock_transactions(item_id);
	CREATE INDEX IF NOT EXISTS idx_activity_user_created ON activity_logs(user_id, created_at);
	`

	_, err := db.Exec(schema)
	return err
}
