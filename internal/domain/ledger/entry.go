// Package ledger defines the append-only stock ledger.
// Entries are never updated; cancellation either appends compensating
// entries or removes a movement's entries, depending on the cancel policy.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
)

// Entry is one immutable fact: a quantity change of an item in a warehouse
// at a point in time, with the rate it moved at and the valuation rate
// computed from all prior entries of the same item/warehouse.
type Entry struct {
	ID            id.ID           `db:"id" json:"id"`
	Seq           int64           `db:"seq" json:"seq"`
	Item          string          `db:"item" json:"item"`
	Warehouse     string          `db:"warehouse" json:"warehouse"`
	QtyChange     decimal.Decimal `db:"qty_change" json:"qtyChange"`
	InOutRate     decimal.Decimal `db:"in_out_rate" json:"inOutRate"`
	ValuationRate decimal.Decimal `db:"valuation_rate" json:"valuationRate"`
	PostedAt      time.Time       `db:"posted_at" json:"postedAt"`
	MovementID    id.ID           `db:"movement_id" json:"movementId"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// Key returns the partition the entry belongs to.
func (e Entry) Key() Key {
	return Key{Item: e.Item, Warehouse: e.Warehouse}
}

// Value is qty_change multiplied by in_out_rate.
func (e Entry) Value() decimal.Decimal {
	return e.QtyChange.Mul(e.InOutRate)
}

// Before reports whether e sorts before o in ledger order (posted_at, seq).
func (e Entry) Before(o Entry) bool {
	if !e.PostedAt.Equal(o.PostedAt) {
		return e.PostedAt.Before(o.PostedAt)
	}
	return e.Seq < o.Seq
}

// Key identifies an item/warehouse partition of the ledger.
type Key struct {
	Item      string
	Warehouse string
}

// Totals are the aggregates valuation is computed from.
type Totals struct {
	Count   int64           `db:"cnt"`
	Qty     decimal.Decimal `db:"qty"`      // Σ qty_change
	Value   decimal.Decimal `db:"value"`    // Σ qty_change*in_out_rate
	AvgRate decimal.Decimal `db:"avg_rate"` // mean of in_out_rate
}

// Empty reports whether no entries contributed to the totals.
func (t Totals) Empty() bool {
	return t.Count == 0
}

// Summarize folds entries into Totals. Callers pass entries of a single partition.
func Summarize(entries []Entry) Totals {
	t := Totals{Qty: decimal.Zero, Value: decimal.Zero, AvgRate: decimal.Zero}
	if len(entries) == 0 {
		return t
	}
	rateSum := decimal.Zero
	for _, e := range entries {
		t.Count++
		t.Qty = t.Qty.Add(e.QtyChange)
		t.Value = t.Value.Add(e.Value())
		rateSum = rateSum.Add(e.InOutRate)
	}
	t.AvgRate = rateSum.Div(decimal.NewFromInt(t.Count))
	return t
}
