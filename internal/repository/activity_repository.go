package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"inventory-service/internal/models"

	"github.com/google/uuid"
)

// SQLiteActivityRepository implements ActivityRepository over the SQLite
// record store. The log is append-only: there is no update or delete.
type SQLiteActivityRepository struct {
	db *sql.DB
}

// NewSQLiteActivityRepository creates a new SQLite activity repository
func NewSQLiteActivityRepository(db *sql.DB) *SQLiteActivityRepository {
	return &SQLiteActivityRepository{db: db}
}

func (r *SQLiteActivityRepository) Record(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()

	var metadata interface{}
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
		metadata = string(encoded)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, activity_type, description,
			entity_id, entity_type, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(entry.ActivityType), entry.Description,
		entry.EntityID, entry.EntityType, metadata, entry.IPAddress, entry.UserAgent,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]models.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type, description, entity_id, entity_type,
			metadata, ip_address, user_agent, created_at
		FROM activity_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		userID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ActivityLog, 0)
	for rows.Next() {
		var entry models.ActivityLog
		var activityType string
		var metadata sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&entry.ID, &entry.UserID, &activityType, &entry.Description,
			&entry.EntityID, &entry.EntityType, &metadata,
			&entry.IPAddress, &entry.UserAgent, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}

		entry.ActivityType = models.ActivityType(activityType)
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
			}
		}
		if createdAt, err := time.Parse(time.RFC3339, createdAtStr); err == nil {
			entry.CreatedAt = createdAt
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	return entries, nil
}
