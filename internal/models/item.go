package models

import "time"

// Item represents a product record owned by a single user.
// LowStockThreshold is optional; when nil, the caller-supplied default
// threshold applies during low-stock evaluation.
type Item struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Distributor       string    `json:"distributor"`
	Unit              string    `json:"unit"`
	Stock             int       `json:"stock"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty"`
	PurchasePrice     *float64  `json:"purchase_price,omitempty"`
	SellPrice         *float64  `json:"sell_price,omitempty"`
	Barcode           string    `json:"barcode"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EffectiveThreshold resolves the low-stock threshold for this item:
// the item's own threshold when set, otherwise the supplied default.
func (i *Item) EffectiveThreshold(defaultThreshold int) int {
	if i.LowStockThreshold != nil {
		return *i.LowStockThreshold
	}
	return defaultThreshold
}

// ItemUpdate carries a partial field set for an item update. Nil fields are
// left untouched by the store.
type ItemUpdate struct {
	Title             *string  `json:"title,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Distributor       *string  `json:"distributor,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	Stock             *int     `json:"stock,omitempty"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty"`
	PurchasePrice     *float64 `json:"purchase_price,omitempty"`
	SellPrice         *float64 `json:"sell_price,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *ItemUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Distributor == nil && u.Unit == nil && u.Stock == nil &&
		u.LowStockThreshold == nil && u.PurchasePrice == nil && u.SellPrice == nil
}

// ItemFilter carries the multi-predicate filter criteria for item queries.
// All supplied predicates are AND-conjoined; either bound of a range may be
// omitted.
type ItemFilter struct {
	Category    string
	Distributor string
	MinStock    *int
	MaxStock    *int
	MinPrice    *float64
	MaxPrice    *float64
}

// Empty reports whether no filter predicate was supplied.
func (f *ItemFilter) Empty() bool {
	return f.Category == "" && f.Distributor == "" &&
		f.MinStock == nil && f.MaxStock == nil &&
		f.MinPrice == nil && f.MaxPrice == nil
}
