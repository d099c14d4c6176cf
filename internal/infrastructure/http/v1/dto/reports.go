package dto

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/reports"
)

// FormatXLSX selects spreadsheet output for reports.
const FormatXLSX = "xlsx"

// StockBalanceReportRequest holds the query of GET /reports/stock-balance.
type StockBalanceReportRequest struct {
	Item      string `form:"item"`
	Warehouse string `form:"warehouse"`
	FromDate  string `form:"fromDate"`
	ToDate    string `form:"toDate"`
	Format    string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// ToFilter converts the request, parsing dates in loc.
func (r *StockBalanceReportRequest) ToFilter(loc *time.Location) (reports.StockBalanceFilter, error) {
	f := reports.StockBalanceFilter{Item: r.Item, Warehouse: r.Warehouse}
	var err error
	if f.FromDate, err = ParseDate("fromDate", r.FromDate, loc); err != nil {
		return f, err
	}
	if f.ToDate, err = ParseDate("toDate", r.ToDate, loc); err != nil {
		return f, err
	}
	return f, nil
}

// StockLedgerReportRequest holds the query of GET /reports/stock-ledger.
type StockLedgerReportRequest struct {
	Item       string `form:"item"`
	Warehouse  string `form:"warehouse"`
	From       string `form:"from"`
	Type       string `form:"type"`
	MovementID string `form:"movementId"`
	Format     string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// ToFilter converts the request, parsing dates in loc.
func (r *StockLedgerReportRequest) ToFilter(loc *time.Location) (reports.StockLedgerFilter, error) {
	f := reports.StockLedgerFilter{Item: r.Item, Warehouse: r.Warehouse}
	var err error
	if f.From, err = ParseDate("from", r.From, loc); err != nil {
		return f, err
	}
	if r.Type != "" {
		typ, err := movement.ParseType(r.Type)
		if err != nil {
			return f, err
		}
		f.Type = &typ
	}
	if r.MovementID != "" {
		mid, err := id.Parse(r.MovementID)
		if err != nil {
			return f, apperror.NewValidation("invalid movement id").
				WithDetail("field", "movementId")
		}
		f.MovementID = &mid
	}
	return f, nil
}
