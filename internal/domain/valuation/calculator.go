package valuation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// Calculate returns the valuation rate for a pending entry of qty units at
// rate, given the totals of all prior entries of its item/warehouse.
//
// qty is always positive; dir decides its sign. A raw result of zero
// (no history, zero denominator, unknown method) falls back to 0 when
// consuming and to rate when receiving.
func Calculate(method Method, totals ledger.Totals, qty, rate decimal.Decimal, dir Direction) decimal.Decimal {
	pq := qty
	if dir == Consuming {
		pq = qty.Neg()
	}

	raw := rawRate(method, totals, pq, rate)
	if raw.IsZero() {
		if dir == Consuming {
			return decimal.Zero
		}
		return rate
	}
	return raw
}

func rawRate(method Method, t ledger.Totals, pq, pr decimal.Decimal) decimal.Decimal {
	if t.Empty() {
		return decimal.Zero
	}
	denom := t.Qty.Add(pq)
	if denom.IsZero() {
		return decimal.Zero
	}

	var num decimal.Decimal
	switch method {
	case MethodFIFO:
		num = t.Value.Add(pq.Mul(pr))
	case MethodMovingAverage:
		num = t.Qty.Mul(t.AvgRate).Add(pq.Mul(pr))
	default:
		return decimal.Zero
	}
	return types.MaxZero(num.Div(denom))
}

// Calculator reads ledger totals and applies Calculate.
type Calculator struct {
	ledger ledger.Repository
}

// NewCalculator creates a calculator over the ledger store.
func NewCalculator(repo ledger.Repository) *Calculator {
	return &Calculator{ledger: repo}
}

// Rate computes the valuation rate of a pending entry.
// Totals are read through ctx, so entries appended earlier in the same
// transaction are included.
func (c *Calculator) Rate(
	ctx context.Context,
	method Method,
	item, warehouse string,
	qty, rate decimal.Decimal,
	dir Direction,
) (decimal.Decimal, error) {
	if !method.Valid() {
		logger.Warn(ctx, "unknown valuation method, using fallback rate",
			"method", method,
			"item", item,
			"warehouse", warehouse,
		)
	}

	totals, err := c.ledger.Totals(ctx, item, warehouse)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger totals for %s/%s: %w", item, warehouse, err)
	}

	return Calculate(method, totals, qty, rate, dir), nil
}
