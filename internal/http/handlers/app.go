package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"givehub/internal/audit"
	"givehub/internal/dispatch"
	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/payments"
)

// Ingestor is the webhook-facing slice of the payment ingestor.
type Ingestor interface {
	Ingest(ctx context.Context, provider string, body []byte, signature string) (payments.Outcome, error)
}

// Dispatcher runs privileged operations for the admin endpoints.
type Dispatcher interface {
	Dispatch(ctx context.Context, token string, req dispatch.Request) (dispatch.Result, error)
}

// AuditQuerier reads the audit trail.
type AuditQuerier interface {
	Query(ctx context.Context, f audit.Filter) ([]domain.AuditRecord, error)
}

// Authorizer gates read-only admin surfaces.
type Authorizer interface {
	Authorize(ctx context.Context, token string, minRole domain.Role) (domain.Identity, error)
}

// App bundles the dependencies the HTTP handlers need.
type App struct {
	SQL        infra.SQLExecutor
	Ingestor   Ingestor
	Dispatcher Dispatcher
	Audit      AuditQuerier
	Gate       Authorizer
	Logger     zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, detail string) {
	a.json(w, code, map[string]any{"error": kind, "detail": detail})
}
