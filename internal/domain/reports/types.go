// Package reports builds the stock balance and stock ledger reports from
// ledger entries.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/movement"
)

// Column describes one report column.
type Column struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options"`
}

// Table is implemented by report rows so they can be exported generically.
// Values follow the order of the report's columns.
type Table interface {
	Header() []Column
	Values() [][]any
}

// --- Stock Balance ---

// StockBalanceFilter restricts the stock balance report.
// FromDate and ToDate bound the posting date, both inclusive.
type StockBalanceFilter struct {
	Item      string
	Warehouse string
	FromDate  *time.Time
	ToDate    *time.Time
}

// StockBalanceRow is the balance of one item in one warehouse.
type StockBalanceRow struct {
	Item                string          `json:"item"`
	Warehouse           string          `json:"warehouse"`
	BalanceQty          decimal.Decimal `json:"balance_qty"`
	BalanceValue        decimal.Decimal `json:"balance_value"`
	InQty               decimal.Decimal `json:"in_qty"`
	InValue             decimal.Decimal `json:"in_value"`
	OutQty              decimal.Decimal `json:"out_qty"`
	OutValue            decimal.Decimal `json:"out_value"`
	LatestValuationRate decimal.Decimal `json:"latest_valuation_rate"`
}

// StockBalanceColumns are the columns of the stock balance report.
var StockBalanceColumns = []Column{
	{Fieldname: "item", Label: "Item", Fieldtype: "Link", Options: "Item"},
	{Fieldname: "warehouse", Label: "Warehouse", Fieldtype: "Link", Options: "Warehouse"},
	{Fieldname: "balance_qty", Label: "Balance Quantity", Fieldtype: "Float"},
	{Fieldname: "balance_value", Label: "Balance Value", Fieldtype: "Float"},
	{Fieldname: "in_qty", Label: "In Quantity", Fieldtype: "Float"},
	{Fieldname: "in_value", Label: "In Value", Fieldtype: "Float"},
	{Fieldname: "out_qty", Label: "Out Quantity", Fieldtype: "Float"},
	{Fieldname: "out_value", Label: "Out Value", Fieldtype: "Float"},
	{Fieldname: "latest_valuation_rate", Label: "Valuation Rate", Fieldtype: "Float"},
}

// StockBalanceReport is the full stock balance report.
type StockBalanceReport struct {
	Columns []Column          `json:"columns"`
	Rows    []StockBalanceRow `json:"rows"`
}

// Header implements Table.
func (r *StockBalanceReport) Header() []Column { return r.Columns }

// Values implements Table.
func (r *StockBalanceReport) Values() [][]any {
	out := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, []any{
			row.Item,
			row.Warehouse,
			row.BalanceQty.InexactFloat64(),
			row.BalanceValue.InexactFloat64(),
			row.InQty.InexactFloat64(),
			row.InValue.InexactFloat64(),
			row.OutQty.InexactFloat64(),
			row.OutValue.InexactFloat64(),
			row.LatestValuationRate.InexactFloat64(),
		})
	}
	return out
}

// --- Stock Ledger ---

// StockLedgerFilter restricts the stock ledger report.
//
// Every field narrows the entries before the scan, so running balances
// only accumulate matching entries.
type StockLedgerFilter struct {
	Item      string
	Warehouse string
	// From is a lower bound on the posting timestamp, inclusive.
	From *time.Time
	// Type keeps incoming rows for Receive and outgoing rows for Consume.
	// Transfer rows are both, so Transfer does not filter.
	Type       *movement.Type
	MovementID *id.ID
}

// StockLedgerRow is one ledger entry with running balances of its partition.
type StockLedgerRow struct {
	PostingDate   string          `json:"posting_date"`
	PostingTime   string          `json:"posting_time"`
	Item          string          `json:"item"`
	Warehouse     string          `json:"warehouse"`
	QtyChange     decimal.Decimal `json:"qty_change"`
	BalanceQty    decimal.Decimal `json:"balance_qty"`
	InOutRate     decimal.Decimal `json:"in_out_rate"`
	ValuationRate decimal.Decimal `json:"valuation_rate"`
	ValueChange   decimal.Decimal `json:"value_change"`
	BalanceValue  decimal.Decimal `json:"balance_value"`
	MovementID    id.ID           `json:"movement_id"`
}

// StockLedgerColumns are the columns of the stock ledger report.
var StockLedgerColumns = []Column{
	{Fieldname: "posting_date", Label: "Posting Date", Fieldtype: "Date"},
	{Fieldname: "posting_time", Label: "Posting Time", Fieldtype: "Time"},
	{Fieldname: "item", Label: "Item", Fieldtype: "Link", Options: "Item"},
	{Fieldname: "warehouse", Label: "Warehouse", Fieldtype: "Link", Options: "Warehouse"},
	{Fieldname: "qty_change", Label: "Quantity Change", Fieldtype: "Float"},
	{Fieldname: "balance_qty", Label: "Balance Quantity", Fieldtype: "Float"},
	{Fieldname: "in_out_rate", Label: "In/Out Rate", Fieldtype: "Float"},
	{Fieldname: "valuation_rate", Label: "Valuation Rate", Fieldtype: "Float"},
	{Fieldname: "value_change", Label: "Value Change", Fieldtype: "Float"},
	{Fieldname: "balance_value", Label: "Balance Value", Fieldtype: "Float"},
	{Fieldname: "movement_id", Label: "Stock Entry", Fieldtype: "Link", Options: "Stock Entry"},
}

// StockLedgerReport is the full stock ledger report.
type StockLedgerReport struct {
	Columns []Column         `json:"columns"`
	Rows    []StockLedgerRow `json:"rows"`
}

// Header implements Table.
func (r *StockLedgerReport) Header() []Column { return r.Columns }

// Values implements Table.
func (r *StockLedgerReport) Values() [][]any {
	out := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, []any{
			row.PostingDate,
			row.PostingTime,
			row.Item,
			row.Warehouse,
			row.QtyChange.InexactFloat64(),
			row.BalanceQty.InexactFloat64(),
			row.InOutRate.InexactFloat64(),
			row.ValuationRate.InexactFloat64(),
			row.ValueChange.InexactFloat64(),
			row.BalanceValue.InexactFloat64(),
			row.MovementID.String(),
		})
	}
	return out
}
