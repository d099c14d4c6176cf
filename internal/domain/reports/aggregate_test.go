package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(seq int64, item, wh string, hour int, qty, inOut, val string) ledger.Entry {
	return ledger.Entry{
		Seq:           seq,
		Item:          item,
		Warehouse:     wh,
		QtyChange:     d(qty),
		InOutRate:     d(inOut),
		ValuationRate: d(val),
		PostedAt:      time.Date(2024, 3, 10, hour, 0, 0, 0, time.UTC),
	}
}

// The receive/consume/receive sequence at 500, 500 and 1000.
func sequence() []ledger.Entry {
	return []ledger.Entry{
		entry(1, "ITEM-1", "Main", 9, "5", "500", "500"),
		entry(2, "ITEM-1", "Main", 10, "-2", "500", "500"),
		entry(3, "ITEM-1", "Main", 11, "2", "1000", "700"),
	}
}

func TestBuildStockBalance(t *testing.T) {
	rows := BuildStockBalance(sequence())

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "ITEM-1", r.Item)
	assert.Equal(t, "Main", r.Warehouse)
	assert.True(t, r.InQty.Equal(d("7")), r.InQty.String())
	assert.True(t, r.InValue.Equal(d("4500")), r.InValue.String())
	assert.True(t, r.OutQty.Equal(d("-2")), r.OutQty.String())
	assert.True(t, r.OutValue.Equal(d("-1000")), r.OutValue.String())
	assert.True(t, r.BalanceQty.Equal(d("5")), r.BalanceQty.String())
	assert.True(t, r.BalanceValue.Equal(d("3500")), r.BalanceValue.String())
	assert.True(t, r.LatestValuationRate.Equal(d("700")), r.LatestValuationRate.String())
}

func TestBuildStockBalance_GroupsAndSorts(t *testing.T) {
	entries := []ledger.Entry{
		entry(1, "B", "Main", 9, "1", "10", "10"),
		entry(2, "A", "Store", 9, "2", "10", "10"),
		entry(3, "A", "Main", 9, "3", "10", "12.345"),
	}

	rows := BuildStockBalance(entries)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A/Main", "A/Store", "B/Main"}, []string{
		rows[0].Item + "/" + rows[0].Warehouse,
		rows[1].Item + "/" + rows[1].Warehouse,
		rows[2].Item + "/" + rows[2].Warehouse,
	})
	assert.Equal(t, "12.35", rows[0].LatestValuationRate.StringFixed(2))
}

func TestBuildStockBalance_LatestUsesSeqOnTies(t *testing.T) {
	entries := []ledger.Entry{
		entry(1, "A", "Main", 9, "1", "10", "10"),
		entry(2, "A", "Main", 9, "1", "30", "20"),
	}

	rows := BuildStockBalance(entries)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].LatestValuationRate.Equal(d("20")))
}

func TestBuildStockLedger(t *testing.T) {
	rows := BuildStockLedger(sequence(), nil, time.UTC)

	want := []struct {
		qty, balQty, rate, change, balValue string
	}{
		{"5", "5", "500", "2500", "2500"},
		{"-2", "3", "500", "-1000", "1500"},
		{"2", "5", "700", "1400", "2900"},
	}

	require.Len(t, rows, len(want))
	for i, w := range want {
		r := rows[i]
		assert.True(t, r.QtyChange.Equal(d(w.qty)), "row %d qty %s", i, r.QtyChange)
		assert.True(t, r.BalanceQty.Equal(d(w.balQty)), "row %d balance qty %s", i, r.BalanceQty)
		assert.True(t, r.ValuationRate.Equal(d(w.rate)), "row %d rate %s", i, r.ValuationRate)
		assert.True(t, r.ValueChange.Equal(d(w.change)), "row %d change %s", i, r.ValueChange)
		assert.True(t, r.BalanceValue.Equal(d(w.balValue)), "row %d balance %s", i, r.BalanceValue)
	}
	assert.Equal(t, "2024-03-10", rows[0].PostingDate)
	assert.Equal(t, "09:00:00", rows[0].PostingTime)
}

func TestBuildStockLedger_FilterRunsBeforeBalances(t *testing.T) {
	entries := []ledger.Entry{
		entry(1, "A", "Main", 9, "5", "10", "10"),
		entry(2, "A", "Store", 9, "1", "20", "20"),
		entry(3, "A", "Main", 10, "-2", "10", "10"),
	}

	onlyOutgoing := func(e ledger.Entry) bool { return e.QtyChange.IsNegative() }
	rows := BuildStockLedger(entries, onlyOutgoing, time.UTC)

	require.Len(t, rows, 1)
	// Balances start from the kept rows, not the earlier receipt.
	assert.True(t, rows[0].BalanceQty.Equal(d("-2")), rows[0].BalanceQty.String())
	assert.True(t, rows[0].BalanceValue.Equal(d("-20")), rows[0].BalanceValue.String())
}

func TestBuildStockLedger_PartitionsStayApart(t *testing.T) {
	entries := []ledger.Entry{
		entry(1, "A", "Main", 9, "5", "10", "10"),
		entry(2, "A", "Store", 9, "1", "20", "20"),
		entry(3, "A", "Main", 10, "-2", "10", "10"),
	}

	rows := BuildStockLedger(entries, nil, time.UTC)

	require.Len(t, rows, 3)
	assert.True(t, rows[1].BalanceQty.Equal(d("1")))
	assert.True(t, rows[2].BalanceQty.Equal(d("3")))
	assert.True(t, rows[2].BalanceValue.Equal(d("30")))
}

func TestBuildStockLedger_RendersInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	rows := BuildStockLedger([]ledger.Entry{entry(1, "A", "Main", 21, "1", "1", "1")}, nil, loc)

	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-11", rows[0].PostingDate)
	assert.Equal(t, "02:00:00", rows[0].PostingTime)
}

func TestLedgerRowFilter(t *testing.T) {
	mid := id.New()
	e := entry(1, "A", "Main", 10, "-1", "1", "1")
	e.MovementID = mid
	other := id.New()
	from := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
	receive, consume, transfer := typePtr("Receive"), typePtr("Consume"), typePtr("Transfer")

	tests := []struct {
		name   string
		filter StockLedgerFilter
		want   bool
	}{
		{"no filter", StockLedgerFilter{}, true},
		{"receive hides outgoing", StockLedgerFilter{Type: receive}, false},
		{"consume keeps outgoing", StockLedgerFilter{Type: consume}, true},
		{"transfer keeps all", StockLedgerFilter{Type: transfer}, true},
		{"before lower bound", StockLedgerFilter{From: &from}, false},
		{"movement match", StockLedgerFilter{MovementID: &mid}, true},
		{"movement mismatch", StockLedgerFilter{MovementID: &other}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledgerRowFilter(tt.filter)(e))
		})
	}
}

func typePtr(s string) *movement.Type {
	t := movement.Type(s)
	return &t
}
