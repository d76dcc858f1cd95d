package handlers

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message" example:"item deleted successfully"`
}

// CountResponse carries a single count value
type CountResponse struct {
	Count int `json:"count" example:"42"`
}

// ListResponse wraps a page of results with its paging parameters
type ListResponse struct {
	Data  interface{} `json:"data"`
	Skip  int         `json:"skip" example:"0"`
	Limit int         `json:"limit" example:"50"`
}

// CreateItemRequest represents the request body for creating an item
type CreateItemRequest struct {
	// Product title
	Title string `json:"title" binding:"required" example:"Arabica Coffee Beans 1kg"`

	Description string `json:"description" example:"Whole beans, medium roast"`
	Category    string `json:"category" example:"beverages"`
	Distributor string `json:"distributor" example:"Acme Wholesale"`
	Unit        string `json:"unit" example:"bag"`

	// Initial stock quantity (must be >= 0)
	Stock int `json:"stock" binding:"min=0" example:"100"`

	// Per-item low stock threshold; omit to use the service default
	LowStockThreshold *int `json:"low_stock_threshold,omitempty" example:"5"`

	PurchasePrice *float64 `json:"purchase_price,omitempty" example:"8.50"`
	SellPrice     *float64 `json:"sell_price,omitempty" example:"12.99"`

	// Barcode; omit to have one generated
	Barcode string `json:"barcode" example:"7891234567895"`
}

// UpdateItemRequest represents the request body for a partial item update.
// Omitted fields are left untouched.
type UpdateItemRequest struct {
	Title             *string  `json:"title,omitempty" example:"Arabica Coffee Beans 1kg"`
	Description       *string  `json:"description,omitempty"`
	Category          *string  `json:"category,omitempty" example:"beverages"`
	Distributor       *string  `json:"distributor,omitempty"`
	Unit              *string  `json:"unit,omitempty" example:"bag"`
	Stock             *int     `json:"stock,omitempty" example:"80"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty" example:"5"`
	PurchasePrice     *float64 `json:"purchase_price,omitempty" example:"8.50"`
	SellPrice         *float64 `json:"sell_price,omitempty" example:"12.99"`
}

// CreateTransactionRequest represents the request body for recording a
// stock transaction
type CreateTransactionRequest struct {
	ItemID string `json:"item_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`

	// Transaction type: loss, damage or return
	Type string `json:"transaction_type" binding:"required" example:"loss"`

	// Quantity to deduct from the item's stock (must be >= 1)
	Quantity int `json:"quantity" binding:"required,min=1" example:"3"`

	Reason          string   `json:"reason" binding:"required" example:"expired"`
	Notes           string   `json:"notes" example:"found during monthly audit"`
	CostImpact      *float64 `json:"cost_impact,omitempty" example:"25.50"`
	ReferenceNumber string   `json:"reference_number" example:"AUD-2024-017"`
}

// UpdateTransactionRequest carries the mutable fields of a transaction.
// Quantity and item reference are immutable.
type UpdateTransactionRequest struct {
	Reason          *string  `json:"reason,omitempty" example:"expired"`
	Notes           *string  `json:"notes,omitempty"`
	CostImpact      *float64 `json:"cost_impact,omitempty" example:"25.50"`
	ReferenceNumber *string  `json:"reference_number,omitempty" example:"AUD-2024-017"`
}
