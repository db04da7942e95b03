package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"givehub/internal/domain"
)

// ReceiptChecker looks up the on-chain fate of a submitted transaction.
type ReceiptChecker interface {
	ReceiptStatus(ctx context.Context, chainID uint64, txHash string) (domain.OperationStatus, error)
}

// ReconcileStore is the slice of the operation store the reconciler needs.
type ReconcileStore interface {
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]StaleOperation, error)
	Confirm(ctx context.Context, id, txHash string) error
	Fail(ctx context.Context, id, detail string) error
}

// Reconciler settles operations whose confirmation wait timed out. A timed
// out transaction may still have confirmed, so its record stays pending until
// the receipt is looked up by hash; only after giveUp without a receipt is it
// declared abandoned.
type Reconciler struct {
	store    ReconcileStore
	checker  ReceiptChecker
	audit    AuditAppender
	staleAge time.Duration
	interval time.Duration
	giveUp   time.Duration
	logger   zerolog.Logger
}

func NewReconciler(store ReconcileStore, checker ReceiptChecker, audit AuditAppender, staleAge, interval, giveUp time.Duration, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		checker:  checker,
		audit:    audit,
		staleAge: staleAge,
		interval: interval,
		giveUp:   giveUp,
		logger:   logger,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Msg("reconciler: started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciler: stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.SweepOnce(ctx); err != nil {
				r.logger.Error().Err(err).Msg("reconciler: sweep failed")
			}
		}
	}
}

// SweepOnce reconciles one batch of stale pending operations.
func (r *Reconciler) SweepOnce(ctx context.Context) error {
	stale, err := r.store.ListStalePending(ctx, r.staleAge, 100)
	if err != nil {
		return err
	}

	for _, op := range stale {
		status, err := r.checker.ReceiptStatus(ctx, op.ChainID, op.TxHash)
		switch {
		case err == nil && status == domain.OperationConfirmed:
			if err := r.store.Confirm(ctx, op.ID, op.TxHash); err != nil {
				r.logger.Error().Err(err).Str("operation_id", op.ID).Msg("reconciler: confirm failed")
				continue
			}
			r.appendOutcome(ctx, op, domain.AuditConfirmed, "confirmed by receipt lookup")
			r.logger.Info().Str("operation_id", op.ID).Str("tx_hash", op.TxHash).Msg("reconciler: late confirmation settled")

		case err == nil && status == domain.OperationFailed:
			if err := r.store.Fail(ctx, op.ID, "reverted"); err != nil {
				r.logger.Error().Err(err).Str("operation_id", op.ID).Msg("reconciler: fail failed")
				continue
			}
			r.appendOutcome(ctx, op, domain.AuditFailed, "reverted on chain")

		case errors.Is(err, domain.ErrNotFound):
			if time.Since(op.CreatedAt) > r.giveUp {
				if err := r.store.Fail(ctx, op.ID, "abandoned"); err != nil {
					r.logger.Error().Err(err).Str("operation_id", op.ID).Msg("reconciler: abandon failed")
					continue
				}
				r.appendOutcome(ctx, op, domain.AuditFailed, "no receipt before give-up window")
			}

		default:
			r.logger.Warn().Err(err).Str("operation_id", op.ID).Msg("reconciler: receipt lookup failed, will retry next sweep")
		}
	}
	return nil
}

func (r *Reconciler) appendOutcome(ctx context.Context, op StaleOperation, status domain.AuditOutcome, detail string) {
	if _, err := r.audit.Append(ctx, domain.AuditRecord{
		ActorID:     op.ActorID,
		Operation:   string(op.Type),
		OperationID: op.ID,
		Params:      map[string]any{"detail": detail},
		Status:      status,
		TxHash:      op.TxHash,
	}); err != nil {
		r.logger.Error().Err(err).Str("operation_id", op.ID).Msg("reconciler: audit append failed, operator attention required")
	}
}
