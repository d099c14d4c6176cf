// Package app wires stores and domain services together for the server
// and the CLI.
package app

import (
	"context"
	"fmt"

	"stockledger/internal/config"
	"stockledger/internal/core/clock"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/valuation"
	infranumerator "stockledger/internal/infrastructure/numerator"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/document_repo"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/pkg/logger"
)

// CatalogRepository is satisfied by both catalog stores. The engine uses
// its existence checks.
type CatalogRepository interface {
	catalog.Repository
	movement.Catalog
}

// Storage is one backend's set of repositories and its transaction manager.
type Storage struct {
	Name      string
	Ledger    ledger.Repository
	Movements movement.Repository
	Catalog   CatalogRepository
	Settings  valuation.SettingsRepository
	Sequences numerator.Sequences
	TxManager tx.ReadOnlyManager

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend's resources.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewMemoryStorage returns a fresh in-memory backend stamping times from
// clk, or the wall clock when clk is nil.
func NewMemoryStorage(clk clock.Clock) *Storage {
	st := memory.New(memory.WithClock(clk))
	return &Storage{
		Name:      config.StorageMemory,
		Ledger:    st.Ledger(),
		Movements: st.Movements(),
		Catalog:   st.Catalog(),
		Settings:  st.Settings(),
		Sequences: st.Sequences(),
		TxManager: st,
		ping:      st.Ping,
	}
}

// OpenPostgres connects to PostgreSQL and applies the schema.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	postgres.LogPoolStats(ctx, pool)

	txm := postgres.NewTxManager(pool, cfg.TxTimeout)
	return &Storage{
		Name:      config.StoragePostgres,
		Ledger:    ledger_repo.NewLedgerRepo(txm),
		Movements: document_repo.NewMovementRepo(txm),
		Catalog:   catalog_repo.NewCatalogRepo(txm),
		Settings:  catalog_repo.NewSettingsRepo(txm),
		Sequences: infranumerator.New(txm),
		TxManager: txm,
		ping:      txm.Ping,
		close:     pool.Close,
	}, nil
}

// OpenStorage opens the backend selected by cfg.Storage.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		return NewMemoryStorage(nil), nil
	case config.StoragePostgres:
		return OpenPostgres(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
