package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"givehub/internal/audit"
	"givehub/internal/chain"
	"givehub/internal/dispatch"
	"givehub/internal/infra"
)

// Standalone reconciliation sweep. Operators run this when the API process is
// down or when a backlog of timed-out submissions needs settling out of band.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: db connection failed")
	}
	defer pool.Close()

	registry, err := chain.LoadRegistry(cfg.ChainConfigJSON)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: failed to load chain registry")
	}

	runner := infra.NewSQLRunner(pool, logger)
	submitter := chain.NewSubmitter(registry, cfg.ConfirmTimeout, logger)
	defer submitter.Close()

	reconciler := dispatch.NewReconciler(
		dispatch.NewPGStore(runner),
		submitter,
		audit.NewStore(runner),
		cfg.ConfirmTimeout,
		cfg.ReconcileInterval,
		cfg.ReconcileGiveUp,
		logger,
	)

	if err := reconciler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("reconciler: stopped with error")
	}
	logger.Info().Msg("reconciler: stopped")
}
