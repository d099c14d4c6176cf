package reports

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
)

// Source lists ledger entries in ledger order. Implemented by ledger.Repository.
type Source interface {
	List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error)
}

// Service provides report generation operations.
type Service struct {
	src Source
	txm tx.ReadOnlyManager
	loc *time.Location
}

// NewService creates a reports service. txm may be nil, in which case
// reads are not wrapped in a read-only transaction. loc is the location
// posting dates and times are rendered in.
func NewService(src Source, txm tx.ReadOnlyManager, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{src: src, txm: txm, loc: loc}
}

// Location returns the location dates are rendered in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) read(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txm == nil {
		return fn(ctx)
	}
	return s.txm.ReadOnly(ctx, fn)
}

// StockBalance generates the stock balance report.
func (s *Service) StockBalance(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperror.NewValidation("from date must not be after to date").
			WithDetail("field", "fromDate")
	}

	var entries []ledger.Entry
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.src.List(ctx, ledger.Filter{
			Item:      filter.Item,
			Warehouse: filter.Warehouse,
			FromDate:  filter.FromDate,
			ToDate:    filter.ToDate,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	return &StockBalanceReport{
		Columns: StockBalanceColumns,
		Rows:    BuildStockBalance(entries),
	}, nil
}

// StockLedger generates the stock ledger report.
func (s *Service) StockLedger(ctx context.Context, filter StockLedgerFilter) (*StockLedgerReport, error) {
	var entries []ledger.Entry
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.src.List(ctx, ledger.Filter{
			Item:      filter.Item,
			Warehouse: filter.Warehouse,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	return &StockLedgerReport{
		Columns: StockLedgerColumns,
		Rows:    BuildStockLedger(entries, ledgerRowFilter(filter), s.loc),
	}, nil
}

func ledgerRowFilter(f StockLedgerFilter) func(ledger.Entry) bool {
	return func(e ledger.Entry) bool {
		if f.From != nil && e.PostedAt.Before(*f.From) {
			return false
		}
		if f.MovementID != nil && e.MovementID != *f.MovementID {
			return false
		}
		if f.Type != nil {
			switch *f.Type {
			case movement.TypeReceive:
				return e.QtyChange.IsPositive()
			case movement.TypeConsume:
				return e.QtyChange.IsNegative()
			}
		}
		return true
	}
}
