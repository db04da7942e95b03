package receipts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/retry"
	"givehub/internal/sqlinline"
)

// Sender delivers a rendered receipt to a donor address.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Issuer writes and delivers donation receipts asynchronously. It is fully
// decoupled from the ledger transaction: a receipt failure is logged and
// retried on its own schedule and can never block or roll back a financial
// write.
type Issuer struct {
	sql     infra.SQLExecutor
	sender  Sender
	queue   chan domain.DonationEvent
	retry   retry.Strategy
	printer *message.Printer
	logger  zerolog.Logger
}

// NewIssuer builds an issuer. A nil sender records receipts without
// delivering them.
func NewIssuer(sql infra.SQLExecutor, sender Sender, queueSize int, strategy retry.Strategy, logger zerolog.Logger) *Issuer {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Issuer{
		sql:     sql,
		sender:  sender,
		queue:   make(chan domain.DonationEvent, queueSize),
		retry:   strategy,
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
}

// Enqueue hands a donation to the issuer without blocking. It reports false
// when the queue is full; the caller logs and moves on.
func (i *Issuer) Enqueue(d domain.DonationEvent) bool {
	select {
	case i.queue <- d:
		return true
	default:
		return false
	}
}

// Run drains the queue until the context is cancelled.
func (i *Issuer) Run(ctx context.Context) error {
	i.logger.Info().Msg("receipts: issuer started")
	for {
		select {
		case <-ctx.Done():
			i.logger.Info().Msg("receipts: issuer stopped")
			return ctx.Err()
		case d := <-i.queue:
			i.issue(ctx, d)
		}
	}
}

func (i *Issuer) issue(ctx context.Context, d domain.DonationEvent) {
	body := i.printer.Sprintf("Thank you! Your donation of $%.2f has been applied to the campaign. Reference: %s.",
		float64(d.Gross)/100, d.ExternalRef)

	row := i.sql.QueryRow(ctx, sqlinline.QInsertReceipt, d.ID, d.DonorEmail, body)
	var receiptID string
	if err := row.Scan(&receiptID); err != nil {
		i.logger.Error().Err(err).Str("donation_id", d.ID).Msg("receipts: insert failed")
		return
	}

	err := i.retry.Execute(ctx, func(ctx context.Context) error {
		return i.deliver(ctx, d, body)
	})
	if err != nil {
		i.logger.Error().Err(err).Str("receipt_id", receiptID).Msg("receipts: delivery failed")
		if _, execErr := i.sql.Exec(ctx, sqlinline.QMarkReceiptFailed, receiptID); execErr != nil {
			i.logger.Error().Err(execErr).Str("receipt_id", receiptID).Msg("receipts: mark failed errored")
		}
		return
	}

	if _, err := i.sql.Exec(ctx, sqlinline.QMarkReceiptIssued, receiptID); err != nil {
		i.logger.Error().Err(err).Str("receipt_id", receiptID).Msg("receipts: mark issued errored")
		return
	}
	i.logger.Info().Str("receipt_id", receiptID).Str("donation_id", d.ID).Msg("receipts: issued")
}

// deliver pushes the receipt to the donor. Donor identity is best effort, so
// a missing email resolves the receipt without delivery.
func (i *Issuer) deliver(ctx context.Context, d domain.DonationEvent, body string) error {
	if d.DonorEmail == "" || i.sender == nil {
		return nil
	}
	if err := i.sender.Send(ctx, d.DonorEmail, body); err != nil {
		return fmt.Errorf("send receipt for donation %s: %w", d.ID, err)
	}
	return nil
}
