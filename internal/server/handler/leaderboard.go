package handler

import (
	"log/slog"
	"net/http"

	"github.com/sainath5001/walrustruth/internal/service"
)

// LeaderboardHandler serves the predictor rankings.
type LeaderboardHandler struct {
	views  *service.ViewService
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(views *service.ViewService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{views: views, logger: logger}
}

// Leaderboard returns the current rankings. The payload marks whether the
// data is live or the bundled sample.
// GET /api/leaderboard
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.views.Leaderboard(r.Context()))
}
