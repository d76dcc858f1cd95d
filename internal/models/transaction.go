package models

import "time"

// TransactionType enumerates the stock-affecting event kinds.
type TransactionType string

const (
	TransactionLoss   TransactionType = "loss"
	TransactionDamage TransactionType = "damage"
	TransactionReturn TransactionType = "return"
)

// Valid reports whether the type is one of the known enumeration values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionLoss, TransactionDamage, TransactionReturn:
		return true
	}
	return false
}

// StockTransaction records a stock-decrementing event against an item.
// Quantity and ItemID are immutable after creation; only Reason, Notes,
// CostImpact and ReferenceNumber may change via updates.
type StockTransaction struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	UserID          string          `json:"user_id"`
	Type            TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	Reason          string          `json:"reason"`
	Notes           string          `json:"notes,omitempty"`
	CostImpact      *float64        `json:"cost_impact,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransactionUpdate carries the mutable field set of a stock transaction.
type TransactionUpdate struct {
	Reason          *string  `json:"reason,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	CostImpact      *float64 `json:"cost_impact,omitempty"`
	ReferenceNumber *string  `json:"reference_number,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *TransactionUpdate) Empty() bool {
	return u.Reason == nil && u.Notes == nil && u.CostImpact == nil && u.ReferenceNumber == nil
}

// TransactionFilter narrows transaction listings by type and/or item.
type TransactionFilter struct {
	Type   TransactionType
	ItemID string
}

// TypeStats aggregates quantity, cost impact and count for one transaction type.
type TypeStats struct {
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost"`
	Count    int     `json:"count"`
}

// TransactionStats aggregates per-type and overall transaction statistics
// for one owning user.
type TransactionStats struct {
	Loss   TypeStats `json:"loss"`
	Damage TypeStats `json:"damage"`
	Return TypeStats `json:"return"`
	Total  TypeStats `json:"total"`
}
