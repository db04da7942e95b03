package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"givehub/internal/infra"
	"givehub/internal/sqlinline"
)

// CampaignGet returns one campaign with its settlement aggregates.
func (a *App) CampaignGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QGetCampaign, id)

	var campaignID, title, address, version, status string
	var chainID, goal, gross, net, fee int64
	var immediatePayout bool
	var createdAt, updatedAt time.Time
	if err := row.Scan(&campaignID, &title, &chainID, &address, &version, &goal,
		&gross, &net, &fee, &status, &immediatePayout, &createdAt, &updatedAt); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "persistence_error", "failed to load campaign")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"id":                     campaignID,
		"title":                  title,
		"chainId":                chainID,
		"contractAddress":        address,
		"contractVersion":        version,
		"goalAmount":             goal,
		"grossRaised":            gross,
		"netRaised":              net,
		"feeCollected":           fee,
		"status":                 status,
		"immediatePayoutEnabled": immediatePayout,
		"createdAt":              createdAt,
		"updatedAt":              updatedAt,
	})
}

// CampaignDonations lists recent applied donations for a campaign.
func (a *App) CampaignDonations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCampaignDonations, id, 50)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "persistence_error", "failed to load donations")
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var donationID, campaignID, source, externalRef, donorName, status string
		var gross, fee, net int64
		var receivedAt time.Time
		if err := rows.Scan(&donationID, &campaignID, &source, &externalRef,
			&gross, &fee, &net, &donorName, &status, &receivedAt); err != nil {
			continue
		}
		items = append(items, map[string]any{
			"id":         donationID,
			"source":     source,
			"gross":      gross,
			"fee":        fee,
			"net":        net,
			"donorName":  donorName,
			"status":     status,
			"receivedAt": receivedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
