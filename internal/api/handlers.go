package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:           "healthy",
		WebhooksReceived: s.ledger.Len(),
		WebhooksTotal:    s.ledger.Total(),
		LedgerCapacity:   s.ledger.Capacity(),
		LedgerEpoch:      s.ledger.Epoch(),
		UptimeSeconds:    int64(time.Since(s.startedAt).Seconds()),
		VerifyTokenSet:   s.config.Flags.VerifyTokenSet,
		AppSecretSet:     s.config.Flags.AppSecretSet,
	})
}

// handleListWebhooks handles GET /api/webhooks?limit=N, newest first.
func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	limit := s.config.DashboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	limit = min(limit, s.ledger.Capacity())

	records := s.ledger.Snapshot(limit)
	views := make([]WebhookView, 0, len(records))
	for _, rec := range records {
		views = append(views, newWebhookView(rec))
	}

	respondJSON(w, http.StatusOK, WebhookListResponse{
		Count:    s.ledger.Len(),
		Total:    s.ledger.Total(),
		Webhooks: views,
	})
}

// respondJSON is a helper to write JSON responses
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
