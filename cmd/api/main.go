package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"givehub/internal/audit"
	"givehub/internal/auth"
	"givehub/internal/chain"
	"givehub/internal/dispatch"
	"givehub/internal/http/handlers"
	httpapi "givehub/internal/http/httpapi"
	"givehub/internal/infra"
	"givehub/internal/ledger"
	"givehub/internal/payments"
	"givehub/internal/receipts"
	"givehub/internal/retry"
)

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
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	registry, err := chain.LoadRegistry(cfg.ChainConfigJSON)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load chain registry")
	}

	runner := infra.NewSQLRunner(pool, logger)
	gate := auth.NewGate(cfg.JWTSecret, runner, cfg.BootstrapAdminEmails, logger)
	auditStore := audit.NewStore(runner)
	writer := ledger.NewWriter(pool, logger)

	issuer := receipts.NewIssuer(runner, nil, cfg.ReceiptQueueSize,
		retry.NewExponentialBackoff(5, time.Second, 30*time.Second, logger), logger)

	ingestor := payments.NewIngestor(cfg.WebhookSecrets, cfg.FeeBps, writer, issuer, logger)

	submitter := chain.NewSubmitter(registry, cfg.ConfirmTimeout, logger)
	defer submitter.Close()

	opStore := dispatch.NewPGStore(runner)
	dispatcher := dispatch.NewDispatcher(gate, registry, submitter, opStore, auditStore, logger)
	reconciler := dispatch.NewReconciler(opStore, submitter, auditStore,
		cfg.ConfirmTimeout, cfg.ReconcileInterval, cfg.ReconcileGiveUp, logger)

	app := &handlers.App{
		SQL:        runner,
		Ingestor:   ingestor,
		Dispatcher: dispatcher,
		Audit:      auditStore,
		Gate:       gate,
		Logger:     logger,
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := issuer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := reconciler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
