package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	DB Pinger
}

// Check handles GET /healthz.
func (h HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("health check database ping failed", "error", err)
		respondError(ctx, w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "service is healthy", map[string]string{"status": "ok"})
}
