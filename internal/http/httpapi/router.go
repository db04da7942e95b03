package httpapi

import (
	stdhttp "net/http"

	"givehub/internal/http/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	// Health
	r.Get("/v1/healthz", app.Health)

	// Provider webhooks: signature-verified, idempotent ingestion.
	r.Post("/payments/{provider}/webhook", app.PaymentWebhook)

	// Public campaign reads.
	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/{id}", app.CampaignGet)
		r.Get("/{id}/donations", app.CampaignDonations)
	})

	// Privileged operations; role checks happen in the dispatcher.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/burn", app.AdminBurn)
		r.Post("/fix-uri", app.AdminFixURI)
		r.Post("/blacklist", app.AdminBlacklist)
		r.Post("/emergency-withdraw", app.AdminEmergencyWithdraw)
		r.Post("/payout-release", app.AdminPayoutRelease)
		r.Get("/audit", app.AdminAuditList)
	})

	return r
}
