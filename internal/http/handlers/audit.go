package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"givehub/internal/audit"
	"givehub/internal/domain"
)

// AdminAuditList exposes the audit trail read-only to authorized admins.
func (a *App) AdminAuditList(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Gate.Authorize(r.Context(), bearer(r), domain.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			a.error(w, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		a.error(w, http.StatusUnauthorized, "unauthorized", "bearer token missing or invalid")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	records, err := a.Audit.Query(r.Context(), audit.Filter{
		ActorID:   q.Get("actor"),
		Operation: q.Get("operation"),
		Status:    q.Get("status"),
		Limit:     limit,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "persistence_error", "failed to load audit records")
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, map[string]any{
			"id":          rec.ID,
			"actorId":     rec.ActorID,
			"operation":   rec.Operation,
			"operationId": rec.OperationID,
			"params":      rec.Params,
			"status":      rec.Status,
			"txHash":      rec.TxHash,
			"createdAt":   rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
