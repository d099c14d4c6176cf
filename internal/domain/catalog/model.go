// Package catalog provides items and warehouses, the reference data
// ledger entries point at.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
)

// Warehouse is a storage location, identified by its unique name.
type Warehouse struct {
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(_ context.Context) error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return apperror.NewValidation("warehouse name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Item is a stock-keeping unit, identified by its unique code.
// Creating an item seeds the ledger with its opening stock.
type Item struct {
	Code                 string          `db:"code" json:"code"`
	Name                 string          `db:"name" json:"name"`
	OpeningQty           decimal.Decimal `db:"opening_qty" json:"openingQty"`
	OpeningValuationRate decimal.Decimal `db:"opening_valuation_rate" json:"openingValuationRate"`
	OpeningWarehouse     string          `db:"opening_warehouse" json:"openingWarehouse"`
	CreatedAt            time.Time       `db:"created_at" json:"createdAt"`
}

// Validate implements entity.Validatable.
func (it *Item) Validate(_ context.Context) error {
	it.Code = strings.TrimSpace(it.Code)
	it.Name = strings.TrimSpace(it.Name)
	if it.Code == "" {
		return apperror.NewValidation("item code is required").
			WithDetail("field", "code")
	}
	if it.Name == "" {
		it.Name = it.Code
	}
	if strings.TrimSpace(it.OpeningWarehouse) == "" {
		return apperror.NewValidation("opening warehouse is required").
			WithDetail("field", "openingWarehouse")
	}
	if !it.OpeningQty.IsPositive() {
		return apperror.NewValidation("opening quantity must be greater than zero").
			WithDetail("field", "openingQty")
	}
	if !it.OpeningValuationRate.IsPositive() {
		return apperror.NewValidation("opening valuation rate must be greater than zero").
			WithDetail("field", "openingValuationRate")
	}
	return nil
}
