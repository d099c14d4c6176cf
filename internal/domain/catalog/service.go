package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/pkg/logger"
)

// OpeningStock stores and confirms a movement in one step.
// Implemented by movement.Service.
type OpeningStock interface {
	CreateAndConfirm(ctx context.Context, m *movement.Movement) ([]ledger.Entry, error)
}

// Service provides business logic for items and warehouses.
type Service struct {
	repo    Repository
	ledger  ledger.Repository
	opening OpeningStock
	txm     tx.Manager
	clock   clock.Clock
	hooks   *domain.HookRegistry[*Item]
}

// NewService creates a catalog service. Item creation always seeds opening
// stock through an after-create hook running in the creating transaction.
func NewService(
	repo Repository,
	ledgerRepo ledger.Repository,
	opening OpeningStock,
	txm tx.Manager,
	clk clock.Clock,
) *Service {
	s := &Service{
		repo:    repo,
		ledger:  ledgerRepo,
		opening: opening,
		txm:     txm,
		clock:   clk,
		hooks:   domain.NewHookRegistry[*Item](),
	}
	s.hooks.On(domain.AfterCreate, s.seedOpeningStock)
	return s
}

// Hooks returns the item hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*Item] {
	return s.hooks
}

// CreateWarehouse stores a new warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	w.CreatedAt = s.clock.Now().UTC()

	if err := s.repo.CreateWarehouse(ctx, w); err != nil {
		return err
	}

	logger.Info(ctx, "warehouse created", "warehouse", w.Name)
	return nil
}

// GetWarehouse retrieves a warehouse by name.
func (s *Service) GetWarehouse(ctx context.Context, name string) (*Warehouse, error) {
	return s.repo.GetWarehouse(ctx, name)
}

// ListWarehouses returns all warehouses ordered by name.
func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

// CreateItem stores a new item and confirms a Receive movement of its
// opening stock into the opening warehouse. Both happen in one transaction.
func (s *Service) CreateItem(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	it.CreatedAt = s.clock.Now().UTC()

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.WarehouseExists(ctx, it.OpeningWarehouse)
		if err != nil {
			return fmt.Errorf("check warehouse: %w", err)
		}
		if !ok {
			return apperror.NewValidation(fmt.Sprintf("warehouse %s does not exist", it.OpeningWarehouse)).
				WithDetail("field", "openingWarehouse")
		}

		if err := s.repo.CreateItem(ctx, it); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterCreate, it)
	})
}

func (s *Service) seedOpeningStock(ctx context.Context, it *Item) error {
	now := s.clock.Now()
	m := movement.New(movement.TypeReceive, now, now)
	m.AddLine(it.Code, it.OpeningQty, it.OpeningValuationRate, "", it.OpeningWarehouse)

	if _, err := s.opening.CreateAndConfirm(ctx, m); err != nil {
		return fmt.Errorf("seed opening stock of %s: %w", it.Code, err)
	}

	logger.Info(ctx, "item created",
		"item", it.Code,
		"opening_qty", it.OpeningQty,
		"opening_warehouse", it.OpeningWarehouse,
		"movement_id", m.ID,
	)
	return nil
}

// GetItem retrieves an item by code.
func (s *Service) GetItem(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetItem(ctx, code)
}

// ListItems returns items ordered by code.
func (s *Service) ListItems(ctx context.Context, page domain.Page) (domain.ListResult[*Item], error) {
	return s.repo.ListItems(ctx, page.Normalize())
}

// LatestRate returns the valuation rate of the most recent ledger entry
// for the item in the warehouse, or zero when there is none.
func (s *Service) LatestRate(ctx context.Context, item, warehouse string) (decimal.Decimal, error) {
	e, err := s.ledger.Latest(ctx, item, warehouse)
	if err != nil {
		return decimal.Zero, fmt.Errorf("latest entry: %w", err)
	}
	if e == nil {
		return decimal.Zero, nil
	}
	return e.ValuationRate, nil
}
