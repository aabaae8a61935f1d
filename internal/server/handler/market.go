package handler

import (
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/service"
)

// MarketHandler serves the market read endpoints.
type MarketHandler struct {
	views  *service.ViewService
	clock  domain.Clock
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(views *service.ViewService, clock domain.Clock, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{views: views, clock: clock, logger: logger}
}

// ListMarkets returns all markets with derived display state, optionally
// annotated with a bettor's positions and filtered by scope.
// GET /api/markets?address=0x..&scope=active|settled|all
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bettor := q.Get("address")
	scope := q.Get("scope")
	if scope == "" {
		scope = service.ScopeAll
	}

	markets, err := h.views.MarketsWithWagers(r.Context(), bettor, scope)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markets": markets,
		"count":   len(markets),
	})
}

// GetMarket returns one market with derived display state.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	m, err := h.views.GetMarket(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.MarketWithWager{
		Market:  m,
		Derived: domain.Derive(m, h.clock.Now()),
	})
}

// PreviewPayout estimates the payout for a hypothetical stake.
// GET /api/markets/{id}/preview?side=1|2&stake=<base units>
func (h *MarketHandler) PreviewPayout(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	q := r.URL.Query()
	sideNum, err := strconv.ParseUint(q.Get("side"), 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid side")
		return
	}
	stake, ok := new(big.Int).SetString(q.Get("stake"), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid stake")
		return
	}

	payout, err := h.views.PreviewPayout(r.Context(), id, domain.Side(sideNum), stake)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"market_id": id,
		"side":      sideNum,
		"stake":     stake.String(),
		"payout":    payout.String(),
	})
}

// Balance returns the settlement-token balance of an address.
// GET /api/balance?address=0x..
func (h *MarketHandler) Balance(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	bal, err := h.views.Balance(r.Context(), address)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"balance": bal.String(),
	})
}
