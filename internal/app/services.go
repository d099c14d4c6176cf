package app

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/config"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/numerator"
	"stockledger/internal/domain"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/valuation"
)

// StockEntryPrefix starts every stock entry number, e.g. STE-2024-00001.
const StockEntryPrefix = "STE"

// Services are the domain services over one Storage.
type Services struct {
	Clock     clock.Clock
	Location  *time.Location
	Settings  *valuation.SettingsService
	Movements *movement.Service
	Catalog   *catalog.Service
	Reports   *reports.Service
}

// Options control service behaviour. Zero values fall back to FIFO,
// the reverse cancel policy, UTC and the wall clock.
type Options struct {
	DefaultMethod valuation.Method
	CancelPolicy  movement.CancelPolicy
	Location      *time.Location
	Clock         clock.Clock
}

// OptionsFromConfig validates and converts the stock settings of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	method, err := valuation.ParseMethod(cfg.DefaultMethod)
	if err != nil {
		return Options{}, fmt.Errorf("STOCK_DEFAULT_METHOD: %w", err)
	}
	policy, err := movement.ParseCancelPolicy(cfg.CancelPolicy)
	if err != nil {
		return Options{}, fmt.Errorf("STOCK_CANCEL_POLICY: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}
	return Options{DefaultMethod: method, CancelPolicy: policy, Location: loc}, nil
}

// NewServices builds the domain services over st.
func NewServices(st *Storage, opts Options) *Services {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(opts.Location)
	}
	if opts.CancelPolicy == "" {
		opts.CancelPolicy = movement.CancelReverse
	}

	settings := valuation.NewSettingsService(st.Settings, opts.DefaultMethod, opts.Clock.Now)
	engine := movement.NewEngine(movement.EngineDeps{
		Movements: st.Movements,
		Ledger:    st.Ledger,
		Catalog:   st.Catalog,
		Clock:     opts.Clock,
		TxManager: st.TxManager,
	})
	movements := movement.NewService(st.Movements, engine, settings, opts.CancelPolicy, st.TxManager, opts.Clock)
	// Stamp the author of drafts from the authenticated caller.
	movements.Hooks().On(domain.BeforeSave, func(ctx context.Context, m *movement.Movement) error {
		audit.EnrichCreatedBy(ctx, &m.CreatedBy)
		return nil
	})
	if st.Sequences != nil {
		numbers := numerator.New(st.Sequences, numerator.DefaultConfig(StockEntryPrefix))
		movements.Hooks().On(domain.BeforeSave, movement.AssignNumber(numbers))
	}

	return &Services{
		Clock:     opts.Clock,
		Location:  opts.Location,
		Settings:  settings,
		Movements: movements,
		Catalog:   catalog.NewService(st.Catalog, st.Ledger, movements, st.TxManager, opts.Clock),
		Reports:   reports.NewService(st.Ledger, st.TxManager, opts.Location),
	}
}
