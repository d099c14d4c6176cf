package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
)

// BuildStockBalance groups entries by item and warehouse. Entries must be in
// ledger order; the last entry of each group gives the latest valuation rate.
// Rows are sorted by item, then warehouse.
func BuildStockBalance(entries []ledger.Entry) []StockBalanceRow {
	type acc struct {
		row    StockBalanceRow
		latest ledger.Entry
	}
	groups := make(map[ledger.Key]*acc)

	for _, e := range entries {
		g, ok := groups[e.Key()]
		if !ok {
			g = &acc{row: StockBalanceRow{
				Item:         e.Item,
				Warehouse:    e.Warehouse,
				BalanceQty:   decimal.Zero,
				BalanceValue: decimal.Zero,
				InQty:        decimal.Zero,
				InValue:      decimal.Zero,
				OutQty:       decimal.Zero,
				OutValue:     decimal.Zero,
			}, latest: e}
			groups[e.Key()] = g
		}

		value := e.Value()
		g.row.BalanceQty = g.row.BalanceQty.Add(e.QtyChange)
		g.row.BalanceValue = g.row.BalanceValue.Add(value)
		switch {
		case e.QtyChange.IsPositive():
			g.row.InQty = g.row.InQty.Add(e.QtyChange)
			g.row.InValue = g.row.InValue.Add(value)
		case e.QtyChange.IsNegative():
			g.row.OutQty = g.row.OutQty.Add(e.QtyChange)
			g.row.OutValue = g.row.OutValue.Add(value)
		}
		if g.latest.Before(e) {
			g.latest = e
		}
	}

	rows := make([]StockBalanceRow, 0, len(groups))
	for _, g := range groups {
		row := g.row
		row.BalanceValue = types.Round2(row.BalanceValue)
		row.InValue = types.Round2(row.InValue)
		row.OutValue = types.Round2(row.OutValue)
		row.LatestValuationRate = types.Round2(g.latest.ValuationRate)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Item != rows[j].Item {
			return rows[i].Item < rows[j].Item
		}
		return rows[i].Warehouse < rows[j].Warehouse
	})
	return rows
}

// BuildStockLedger walks entries in ledger order carrying one running
// balance per item and warehouse. Entries rejected by keep are dropped
// before they reach the balances, so running figures cover the kept rows
// only. A nil keep keeps everything.
func BuildStockLedger(entries []ledger.Entry, keep func(ledger.Entry) bool, loc *time.Location) []StockLedgerRow {
	if loc == nil {
		loc = time.UTC
	}

	type running struct {
		qty   decimal.Decimal
		value decimal.Decimal
	}
	balances := make(map[ledger.Key]*running)

	rows := make([]StockLedgerRow, 0, len(entries))
	for _, e := range entries {
		if keep != nil && !keep(e) {
			continue
		}

		b, ok := balances[e.Key()]
		if !ok {
			b = &running{qty: decimal.Zero, value: decimal.Zero}
			balances[e.Key()] = b
		}

		valueChange := e.QtyChange.Mul(e.ValuationRate)
		b.qty = b.qty.Add(e.QtyChange)
		b.value = b.value.Add(valueChange)

		posted := e.PostedAt.In(loc)
		rows = append(rows, StockLedgerRow{
			PostingDate:   posted.Format(time.DateOnly),
			PostingTime:   posted.Format(time.TimeOnly),
			Item:          e.Item,
			Warehouse:     e.Warehouse,
			QtyChange:     e.QtyChange,
			BalanceQty:    b.qty,
			InOutRate:     e.InOutRate,
			ValuationRate: types.Round2(e.ValuationRate),
			ValueChange:   types.Round2(valueChange),
			BalanceValue:  types.Round2(b.value),
			MovementID:    e.MovementID,
		})
	}
	return rows
}
