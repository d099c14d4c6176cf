package movement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/valuation"
	"stockledger/pkg/logger"
)

// CancelPolicy decides what cancelling a confirmed movement does to the ledger.
// One policy is chosen per deployment.
type CancelPolicy string

const (
	// CancelReverse appends compensating entries at the current time.
	// Ledger history is preserved.
	CancelReverse CancelPolicy = "reverse"
	// CancelDelete removes the movement's entries from the ledger.
	CancelDelete CancelPolicy = "delete"
)

// ParseCancelPolicy parses a policy name. Empty means CancelReverse.
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch CancelPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CancelReverse:
		return CancelReverse, nil
	case CancelDelete:
		return CancelDelete, nil
	}
	return "", fmt.Errorf("unknown cancel policy %q: want %q or %q", s, CancelReverse, CancelDelete)
}

// Engine validates movements and posts them to the ledger.
type Engine struct {
	movements Repository
	ledger    ledger.Repository
	calc      *valuation.Calculator
	catalog   Catalog
	clock     clock.Clock
	txm       tx.Manager
}

// EngineDeps groups Engine dependencies.
type EngineDeps struct {
	Movements Repository
	Ledger    ledger.Repository
	Catalog   Catalog
	Clock     clock.Clock
	TxManager tx.Manager
}

// NewEngine creates a movement engine.
func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		movements: deps.Movements,
		ledger:    deps.Ledger,
		calc:      valuation.NewCalculator(deps.Ledger),
		catalog:   deps.Catalog,
		clock:     deps.Clock,
		txm:       deps.TxManager,
	}
}

// Validate runs every check a movement must pass before it is confirmed:
// posting time not in the future, line invariants, existing references and,
// for Consume and Transfer, enough stock in the source warehouses.
func (e *Engine) Validate(ctx context.Context, m *Movement) error {
	if err := e.checkNotFuture(m.PostedAt); err != nil {
		return err
	}
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if err := e.checkReferences(ctx, m); err != nil {
		return err
	}
	if m.Type == TypeConsume || m.Type == TypeTransfer {
		if err := e.checkAvailability(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkNotFuture(postedAt time.Time) error {
	now := e.clock.Now()
	posted := postedAt.In(now.Location())

	postedDay, today := clock.StartOfDay(posted), clock.StartOfDay(now)
	if postedDay.After(today) {
		return apperror.NewFuturePosting("date cannot be in future").
			WithDetail("postedAt", postedAt)
	}
	if postedDay.Equal(today) && posted.After(now) {
		return apperror.NewFuturePosting("time cannot be in future").
			WithDetail("postedAt", postedAt)
	}
	return nil
}

func (e *Engine) checkReferences(ctx context.Context, m *Movement) error {
	if e.catalog == nil {
		return nil
	}
	for i, line := range m.Lines {
		ok, err := e.catalog.ItemExists(ctx, line.Item)
		if err != nil {
			return fmt.Errorf("check item %s: %w", line.Item, err)
		}
		if !ok {
			return apperror.NewValidation(fmt.Sprintf("item %s does not exist", line.Item)).
				WithDetail("lineNo", i+1)
		}
		for _, wh := range []string{line.SourceWarehouse, line.TargetWarehouse} {
			if wh == "" {
				continue
			}
			ok, err := e.catalog.WarehouseExists(ctx, wh)
			if err != nil {
				return fmt.Errorf("check warehouse %s: %w", wh, err)
			}
			if !ok {
				return apperror.NewValidation(fmt.Sprintf("warehouse %s does not exist", wh)).
					WithDetail("lineNo", i+1)
			}
		}
	}
	return nil
}

// checkAvailability requires the source balance to cover each line's
// quantity on its own, as of the ledger before the movement posts.
func (e *Engine) checkAvailability(ctx context.Context, m *Movement) error {
	for _, line := range m.Lines {
		totals, err := e.ledger.Totals(ctx, line.Item, line.SourceWarehouse)
		if err != nil {
			return fmt.Errorf("balance of %s in %s: %w", line.Item, line.SourceWarehouse, err)
		}
		if totals.Qty.LessThan(line.Qty) {
			return apperror.NewInsufficientStock(line.Item, line.SourceWarehouse, line.Qty.String(), totals.Qty.String())
		}
	}
	return nil
}

// Confirm validates a draft movement and appends its ledger entries, all in
// one transaction. Lines are posted in declaration order, so each entry is
// valued against the ledger including entries of earlier lines.
func (e *Engine) Confirm(ctx context.Context, m *Movement, method valuation.Method) ([]ledger.Entry, error) {
	if err := m.CanConfirm(); err != nil {
		return nil, err
	}

	snapshot := *m
	var entries []ledger.Entry

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.Validate(ctx, m); err != nil {
			return err
		}

		posted, err := e.post(ctx, m.ID, m.Type, m.Lines, m.PostedAt, method)
		if err != nil {
			return err
		}

		m.MarkConfirmed(e.clock.Now())
		if err := e.movements.Update(ctx, m); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}

		entries = posted
		return nil
	})
	if err != nil {
		*m = snapshot
		return nil, err
	}

	logger.Info(ctx, "movement confirmed",
		"movement_id", m.ID,
		"type", m.Type,
		"method", method,
		"entries", len(entries),
	)
	return entries, nil
}

// Cancel undoes a confirmed movement according to policy and marks it
// Cancelled. Reversal posts the opposite movement at the current time
// without a sufficiency check, keeping each line's rate as in_out_rate.
func (e *Engine) Cancel(ctx context.Context, m *Movement, method valuation.Method, policy CancelPolicy) ([]ledger.Entry, error) {
	if err := m.CanCancel(); err != nil {
		return nil, err
	}
	if policy != CancelReverse && policy != CancelDelete {
		return nil, apperror.NewInternal(fmt.Errorf("unknown cancel policy %q", policy))
	}

	snapshot := *m
	var entries []ledger.Entry

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		now := e.clock.Now()

		var err error
		switch policy {
		case CancelDelete:
			entries, err = e.ledger.DeleteByMovement(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("delete ledger entries: %w", err)
			}
		default:
			reversed := make([]Line, len(m.Lines))
			for i, line := range m.Lines {
				reversed[i] = line.Reversed()
			}
			entries, err = e.post(ctx, m.ID, m.Type.Reversed(), reversed, now, method)
			if err != nil {
				return err
			}
		}

		m.MarkCancelled(now)
		if err := e.movements.Update(ctx, m); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}
		return nil
	})
	if err != nil {
		*m = snapshot
		return nil, err
	}

	logger.Info(ctx, "movement cancelled",
		"movement_id", m.ID,
		"policy", policy,
		"entries", len(entries),
	)
	return entries, nil
}

// Entries returns the ledger entries recorded for a movement.
func (e *Engine) Entries(ctx context.Context, movementID id.ID) ([]ledger.Entry, error) {
	return e.ledger.ListByMovement(ctx, movementID)
}

type leg struct {
	warehouse string
	dir       valuation.Direction
}

// legs maps a line to the warehouses it touches. A Transfer consumes from
// the source before it receives into the target.
func legs(typ Type, line Line) []leg {
	switch typ {
	case TypeTransfer:
		return []leg{
			{warehouse: line.SourceWarehouse, dir: valuation.Consuming},
			{warehouse: line.TargetWarehouse, dir: valuation.Receiving},
		}
	case TypeConsume:
		return []leg{{warehouse: line.SourceWarehouse, dir: valuation.Consuming}}
	default:
		return []leg{{warehouse: line.TargetWarehouse, dir: valuation.Receiving}}
	}
}

func (e *Engine) post(
	ctx context.Context,
	movementID id.ID,
	typ Type,
	lines []Line,
	postedAt time.Time,
	method valuation.Method,
) ([]ledger.Entry, error) {
	entries := make([]ledger.Entry, 0, len(lines))
	for _, line := range lines {
		for _, lg := range legs(typ, line) {
			rate, err := e.calc.Rate(ctx, method, line.Item, lg.warehouse, line.Qty, line.Rate, lg.dir)
			if err != nil {
				return nil, err
			}

			qty := line.Qty
			if lg.dir == valuation.Consuming {
				qty = qty.Neg()
			}

			entry := ledger.Entry{
				ID:            id.New(),
				Item:          line.Item,
				Warehouse:     lg.warehouse,
				QtyChange:     qty,
				InOutRate:     line.Rate,
				ValuationRate: rate,
				PostedAt:      postedAt,
				MovementID:    movementID,
			}
			if err := e.ledger.Append(ctx, &entry); err != nil {
				return nil, fmt.Errorf("append ledger entry: %w", err)
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
