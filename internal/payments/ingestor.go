package payments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"givehub/internal/domain"
	"givehub/internal/ledger"
)

// Outcome is the discriminated result of ingesting one webhook delivery.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeRejected
)

// LedgerApplier is the slice of the ledger writer the ingestor needs.
type LedgerApplier interface {
	ApplyDonation(ctx context.Context, d domain.DonationEvent) (ledger.ApplyResult, error)
}

// ReceiptEnqueuer hands an applied donation to the asynchronous receipt
// issuer. Enqueue reports whether the event was queued; a full queue is not
// an ingest failure.
type ReceiptEnqueuer interface {
	Enqueue(d domain.DonationEvent) bool
}

// Ingestor turns provider webhook deliveries into idempotent ledger writes.
type Ingestor struct {
	secrets  map[string]string
	feeBps   int
	ledger   LedgerApplier
	receipts ReceiptEnqueuer
	logger   zerolog.Logger
}

func NewIngestor(secrets map[string]string, feeBps int, l LedgerApplier, receipts ReceiptEnqueuer, logger zerolog.Logger) *Ingestor {
	return &Ingestor{secrets: secrets, feeBps: feeBps, ledger: l, receipts: receipts, logger: logger}
}

// Ingest verifies, normalizes and applies one delivery. Providers redeliver
// at least once, so OutcomeDuplicate is a success for the caller. The error
// accompanies OutcomeRejected (terminal: bad signature or bad payload) or a
// datastore fault, which the provider may safely redeliver.
func (in *Ingestor) Ingest(ctx context.Context, provider string, body []byte, signature string) (Outcome, error) {
	secret, ok := in.secrets[provider]
	if !ok {
		return OutcomeRejected, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidSignature, provider)
	}
	if !VerifySignature(secret, body, signature) {
		in.logger.Warn().Str("provider", provider).Msg("payments: webhook signature mismatch")
		return OutcomeRejected, domain.ErrInvalidSignature
	}

	event, err := normalizeEvent(body)
	if err != nil {
		return OutcomeRejected, err
	}

	event.Fee = ComputeFee(event.Gross, in.feeBps)
	event.Net = event.Gross - event.Fee

	result, err := in.ledger.ApplyDonation(ctx, event)
	if err != nil {
		return OutcomeRejected, err
	}
	switch result.Status {
	case ledger.AlreadyApplied:
		in.logger.Info().
			Str("provider", provider).
			Str("external_ref", event.ExternalRef).
			Msg("payments: duplicate delivery collapsed")
		return OutcomeDuplicate, nil
	case ledger.Applied:
		event.ID = result.DonationID
		event.Status = domain.DonationApplied
		if in.receipts != nil && !in.receipts.Enqueue(event) {
			// Receipt issuance is fire and forget; the issuer retries
			// independently and a full queue never rolls back the ledger.
			in.logger.Warn().Str("donation_id", event.ID).Msg("payments: receipt queue full, dropping")
		}
		return OutcomeAccepted, nil
	default:
		return OutcomeRejected, fmt.Errorf("%w: ledger apply failed", domain.ErrPersistence)
	}
}
