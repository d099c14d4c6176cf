package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"stockledger/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Table names.
const (
	TableWarehouses    = "warehouses"
	TableItems         = "items"
	TableMovements     = "stock_movements"
	TableMovementLines = "stock_movement_lines"
	TableLedger        = "stock_ledger_entries"
	TableSettings      = "stock_settings"
	TableSequences     = "stock_sequences"
)

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
