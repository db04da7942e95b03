package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"givehub/internal/domain"
	"givehub/internal/payments"
)

const maxWebhookBodyBytes = 1 << 20 // 1MB

// signatureHeader carries the provider's HMAC over the raw body.
const signatureHeader = "X-Webhook-Signature"

// PaymentWebhook ingests one provider delivery. Applied and duplicate both
// acknowledge with 200 so the provider stops redelivering; non-200 is
// reserved for authenticity failures, malformed payloads and datastore
// faults (the latter are safe to redeliver under the same idempotency key).
func (a *App) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}

	outcome, err := a.Ingestor.Ingest(r.Context(), provider, body, r.Header.Get(signatureHeader))
	switch outcome {
	case payments.OutcomeAccepted, payments.OutcomeDuplicate:
		a.json(w, http.StatusOK, map[string]any{"received": true})
	default:
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			a.error(w, http.StatusUnauthorized, "invalid_signature", "webhook signature verification failed")
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrValidation):
			a.error(w, http.StatusBadRequest, "invalid_event", err.Error())
		case errors.Is(err, domain.ErrNotFound):
			// Unknown campaign: acknowledged so the provider does not
			// retry-storm; the event is recoverable from logs.
			a.Logger.Error().Err(err).Str("provider", provider).Msg("webhook: event references unknown campaign")
			a.json(w, http.StatusOK, map[string]any{"received": true})
		default:
			a.error(w, http.StatusInternalServerError, "persistence_error", "event not applied, safe to redeliver")
		}
	}
}
