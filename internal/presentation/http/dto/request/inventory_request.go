package request

// StockLevelRequest is one absolute stock value
type StockLevelRequest struct {
	ID    string `json:"id" binding:"required,uuid"`
	Stock int    `json:"stock"`
}

// UpdateStockRequest replaces the stock of the listed products
type UpdateStockRequest struct {
	Items []StockLevelRequest `json:"items" binding:"required,min=1,dive"`
}

// InventorySearchRequest represents inventory search parameters
type InventorySearchRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
