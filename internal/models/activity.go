package models

import "time"

// ActivityType enumerates the recorded user activity kinds.
type ActivityType string

const (
	ActivityItemCreated      ActivityType = "item_created"
	ActivityItemUpdated      ActivityType = "item_updated"
	ActivityItemDeleted      ActivityType = "item_deleted"
	ActivityStockTransaction ActivityType = "stock_transaction"
	ActivityUserLogin        ActivityType = "user_login"
)

// ActivityLog is an append-only record of a user action. Entries are never
// mutated or deleted.
type ActivityLog struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	ActivityType ActivityType           `json:"activity_type"`
	Description  string                 `json:"description"`
	EntityID     string                 `json:"entity_id,omitempty"`
	EntityType   string                 `json:"entity_type,omitempty"` // "item", "transaction", ...
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
