package dto

// UpdateStockSettingsRequest is the body of PUT /settings/stock.
type UpdateStockSettingsRequest struct {
	ValuationMethod string `json:"valuationMethod" binding:"required"`
}
