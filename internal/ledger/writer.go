package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/sqlinline"
)

// ApplyStatus is the discriminated outcome of ApplyDonation.
type ApplyStatus int

const (
	Applied ApplyStatus = iota
	AlreadyApplied
	Failed
)

// ApplyResult carries the outcome plus the donation id when one was written.
type ApplyResult struct {
	Status     ApplyStatus
	DonationID string
}

// TxBeginner starts database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Writer persists donation events idempotently. The donation insert, the
// campaign aggregate increment and the payment-applied audit record are one
// database transaction: partial application cannot happen.
type Writer struct {
	db     TxBeginner
	logger zerolog.Logger
}

func NewWriter(db TxBeginner, logger zerolog.Logger) *Writer {
	return &Writer{db: db, logger: logger}
}

// ApplyDonation applies one normalized donation event. The unique constraint
// on (source, external_ref) is the sole synchronization point for concurrent
// deliveries of the same event: the loser of the race sees a unique violation
// and reports AlreadyApplied, not an error. Failed results are safe to retry
// with the same idempotency key.
func (w *Writer) ApplyDonation(ctx context.Context, d domain.DonationEvent) (ApplyResult, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: begin: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, sqlinline.QInsertDonation,
		d.CampaignID, string(d.Source), d.ExternalRef, d.Gross, d.Fee, d.Net, d.DonorName, d.DonorEmail)
	var donationID string
	if err := row.Scan(&donationID); err != nil {
		if infra.IsUniqueViolation(err) {
			return ApplyResult{Status: AlreadyApplied}, nil
		}
		// The campaign foreign key rejects the insert before the aggregate
		// update ever runs; surface it as the missing campaign it is.
		if infra.IsForeignKeyViolation(err) {
			return ApplyResult{Status: Failed}, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, d.CampaignID)
		}
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: insert donation: %v", domain.ErrPersistence, err)
	}

	tag, err := tx.Exec(ctx, sqlinline.QApplyCampaignAggregates, d.CampaignID, d.Gross, d.Net, d.Fee)
	if err != nil {
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: update campaign aggregates: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, d.CampaignID)
	}

	params, _ := json.Marshal(map[string]any{
		"campaign_id":  d.CampaignID,
		"source":       string(d.Source),
		"external_ref": d.ExternalRef,
		"gross":        d.Gross,
		"fee":          d.Fee,
		"net":          d.Net,
	})
	if _, err := tx.Exec(ctx, sqlinline.QInsertAuditRecord,
		"", "payment_applied", donationID, params, string(domain.AuditApplied), ""); err != nil {
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: audit payment: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ApplyResult{Status: Failed}, fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}

	w.logger.Info().
		Str("donation_id", donationID).
		Str("campaign_id", d.CampaignID).
		Str("external_ref", d.ExternalRef).
		Int64("gross", d.Gross).
		Msg("ledger: donation applied")

	return ApplyResult{Status: Applied, DonationID: donationID}, nil
}
