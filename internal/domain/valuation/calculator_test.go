package valuation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func totals(count int64, qty, value, avg string) ledger.Totals {
	return ledger.Totals{Count: count, Qty: d(qty), Value: d(value), AvgRate: d(avg)}
}

func TestCalculate(t *testing.T) {
	empty := ledger.Totals{}
	afterOpening := totals(1, "5", "2500", "500")
	afterConsume := totals(2, "3", "1500", "500")
	skewed := totals(2, "10", "2800", "200")

	tests := []struct {
		name   string
		method Method
		totals ledger.Totals
		qty    string
		rate   string
		dir    Direction
		want   string
	}{
		{"fifo opening receive falls back to rate", MethodFIFO, empty, "5", "500", Receiving, "500"},
		{"fifo consume at cost basis", MethodFIFO, afterOpening, "2", "500", Consuming, "500"},
		{"fifo receive blends value", MethodFIFO, afterConsume, "2", "1000", Receiving, "700"},
		{"moving average consume", MethodMovingAverage, afterOpening, "2", "500", Consuming, "500"},
		{"moving average receive", MethodMovingAverage, afterConsume, "2", "1000", Receiving, "700"},
		{"fifo weighs value", MethodFIFO, skewed, "10", "200", Receiving, "240"},
		{"moving average weighs mean rate", MethodMovingAverage, skewed, "10", "200", Receiving, "200"},
		{"consume everything hits zero denominator", MethodFIFO, afterOpening, "5", "500", Consuming, "0"},
		{"consume with no history", MethodFIFO, empty, "1", "500", Consuming, "0"},
		{"negative result clamps to zero", MethodFIFO, afterOpening, "2", "2000", Consuming, "0"},
		{"unknown method receiving", Method("LIFO"), afterOpening, "2", "900", Receiving, "900"},
		{"unknown method consuming", Method("LIFO"), afterOpening, "2", "900", Consuming, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.method, tt.totals, d(tt.qty), d(tt.rate), tt.dir)
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCalculate_NeverNegative(t *testing.T) {
	// History with negative value and positive quantity.
	tt := totals(2, "4", "-400", "-100")

	for _, m := range Methods {
		got := Calculate(m, tt, d("1"), d("10"), Receiving)
		assert.False(t, got.IsNegative(), "%s: %s", m, got)
	}
}

type stubLedger struct {
	ledger.Repository
	totals ledger.Totals
	err    error
	calls  []ledger.Key
}

func (s *stubLedger) Totals(_ context.Context, item, warehouse string) (ledger.Totals, error) {
	s.calls = append(s.calls, ledger.Key{Item: item, Warehouse: warehouse})
	return s.totals, s.err
}

func TestCalculator_Rate(t *testing.T) {
	repo := &stubLedger{totals: totals(2, "3", "1500", "500")}
	calc := NewCalculator(repo)

	got, err := calc.Rate(context.Background(), MethodFIFO, "ITEM-1", "Main", d("2"), d("1000"), Receiving)

	require.NoError(t, err)
	assert.True(t, got.Equal(d("700")), got.String())
	assert.Equal(t, []ledger.Key{{Item: "ITEM-1", Warehouse: "Main"}}, repo.calls)
}

func TestCalculator_Rate_StoreError(t *testing.T) {
	repo := &stubLedger{err: errors.New("connection reset")}
	calc := NewCalculator(repo)

	_, err := calc.Rate(context.Background(), MethodFIFO, "ITEM-1", "Main", d("2"), d("1000"), Receiving)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
