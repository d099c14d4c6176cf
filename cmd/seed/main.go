// Package main seeds the configured store with demo warehouses, items and
// stock entries. Re-running it skips records that already exist.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"stockledger/internal/app"
	"stockledger/internal/config"
	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/movement"
	"stockledger/pkg/logger"
)

var warehouses = []string{"Stores", "Work In Progress", "Finished Goods"}

var items = []catalog.Item{
	{Code: "RM-STEEL", Name: "Steel Sheet", OpeningQty: decimal.NewFromInt(100), OpeningValuationRate: decimal.NewFromInt(40), OpeningWarehouse: "Stores"},
	{Code: "RM-BOLT", Name: "Bolt M8", OpeningQty: decimal.NewFromInt(1000), OpeningValuationRate: decimal.RequireFromString("0.25"), OpeningWarehouse: "Stores"},
	{Code: "FG-SHELF", Name: "Shelf Unit", OpeningQty: decimal.NewFromInt(5), OpeningValuationRate: decimal.NewFromInt(180), OpeningWarehouse: "Finished Goods"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalw("invalid stock configuration", "error", err)
	}
	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer storage.Close()

	svc := app.NewServices(storage, opts)

	if err := seed(ctx, svc); err != nil {
		log.Fatalw("seed failed", "error", err)
	}
	log.Info("seed completed")
}

func seed(ctx context.Context, svc *app.Services) error {
	for _, name := range warehouses {
		err := svc.Catalog.CreateWarehouse(ctx, &catalog.Warehouse{Name: name})
		if err := skipDuplicate(err); err != nil {
			return fmt.Errorf("warehouse %s: %w", name, err)
		}
	}

	created := 0
	for i := range items {
		it := items[i]
		err := svc.Catalog.CreateItem(ctx, &it)
		if err := skipDuplicate(err); err != nil {
			return fmt.Errorf("item %s: %w", it.Code, err)
		}
		if err == nil {
			created++
		}
	}

	// Stock entries are only added on the first run.
	if created == 0 {
		logger.Info(ctx, "items already present, skipping stock entries")
		return nil
	}

	now := svc.Clock.Now()

	receipt := movement.New(movement.TypeReceive, now, now)
	receipt.AddLine("RM-STEEL", decimal.NewFromInt(50), decimal.NewFromInt(46), "", "Stores")
	receipt.AddLine("RM-BOLT", decimal.NewFromInt(500), decimal.RequireFromString("0.22"), "", "Stores")
	if _, err := svc.Movements.CreateAndConfirm(ctx, receipt); err != nil {
		return fmt.Errorf("receipt: %w", err)
	}

	transfer := movement.New(movement.TypeTransfer, now, now)
	transfer.AddLine("RM-STEEL", decimal.NewFromInt(30), decimal.NewFromInt(44), "Stores", "Work In Progress")
	if _, err := svc.Movements.CreateAndConfirm(ctx, transfer); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	issue := movement.New(movement.TypeConsume, now, now)
	issue.AddLine("RM-BOLT", decimal.NewFromInt(120), decimal.RequireFromString("0.24"), "Stores", "")
	if err := svc.Movements.Create(ctx, issue); err != nil {
		return fmt.Errorf("draft issue: %w", err)
	}

	logger.Info(ctx, "demo stock entries created", "draft_id", issue.ID)
	return nil
}

func skipDuplicate(err error) error {
	if apperror.HasCode(err, apperror.CodeDuplicate) {
		return nil
	}
	return err
}
