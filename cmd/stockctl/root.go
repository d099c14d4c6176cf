package main

import (
	"context"

	"github.com/spf13/cobra"

	"stockledger/internal/app"
	"stockledger/internal/config"
	appctx "stockledger/internal/core/context"
	"stockledger/pkg/logger"
)

// skipStorage marks commands that run without opening the store.
const skipStorage = "skip-storage"

type cli struct {
	cfg     *config.Config
	storage *app.Storage
	svc     *app.Services
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "stockctl",
		Short:             "Stock ledger reports and settings",
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
		PersistentPostRun: c.close,
	}
	root.AddCommand(
		c.stockBalanceCmd(),
		c.stockLedgerCmd(),
		c.settingsCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	ctx := logger.WithLogger(cmd.Context(), log.WithComponent("stockctl"))
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	cmd.SetContext(ctx)

	if cmd.Annotations[skipStorage] != "" {
		return nil
	}

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	st, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	c.storage = st
	c.svc = app.NewServices(st, opts)
	return nil
}

func (c *cli) close(*cobra.Command, []string) {
	if c.storage != nil {
		c.storage.Close()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
