package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	wallet string
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. wallet is the acting address, or
// empty in read-only mode.
func NewHealthHandler(wallet string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{wallet: wallet, logger: logger}
}

// HealthCheck responds with a simple JSON status indicating the server is
// alive and whether writes are possible.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"wallet":    h.wallet,
		"read_only": h.wallet == "",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
