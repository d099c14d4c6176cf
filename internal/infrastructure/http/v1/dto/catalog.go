package dto

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/domain/catalog"
)

// CreateWarehouseRequest is the body of POST /warehouses.
type CreateWarehouseRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts the request to a warehouse.
func (r *CreateWarehouseRequest) ToEntity() *catalog.Warehouse {
	return &catalog.Warehouse{Name: r.Name}
}

// CreateItemRequest is the body of POST /items.
type CreateItemRequest struct {
	Code                 string          `json:"code" binding:"required"`
	Name                 string          `json:"name"`
	OpeningQty           decimal.Decimal `json:"openingQty"`
	OpeningValuationRate decimal.Decimal `json:"openingValuationRate"`
	OpeningWarehouse     string          `json:"openingWarehouse" binding:"required"`
}

// ToEntity converts the request to an item.
func (r *CreateItemRequest) ToEntity() *catalog.Item {
	return &catalog.Item{
		Code:                 r.Code,
		Name:                 r.Name,
		OpeningQty:           r.OpeningQty,
		OpeningValuationRate: r.OpeningValuationRate,
		OpeningWarehouse:     r.OpeningWarehouse,
	}
}

// ItemRateRequest holds the query of GET /items/:code/rate.
type ItemRateRequest struct {
	Warehouse string `form:"warehouse" binding:"required"`
}

// ItemRateResponse is the latest valuation rate of an item in a warehouse.
type ItemRateResponse struct {
	Item          string          `json:"item"`
	Warehouse     string          `json:"warehouse"`
	ValuationRate decimal.Decimal `json:"valuationRate"`
}
