package handler

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/service"
)

// maxEvidenceBytes caps evidence uploads at 16 MiB.
const maxEvidenceBytes = 16 << 20

// MutationHandler serves the write endpoints. Every response carries the
// transaction hash so clients can link out to an explorer.
type MutationHandler struct {
	mutations *service.MutationService
	wallet    string
	logger    *slog.Logger
}

// NewMutationHandler creates a MutationHandler. wallet is the acting address
// used as the caller for authorization checks.
func NewMutationHandler(mutations *service.MutationService, wallet string, logger *slog.Logger) *MutationHandler {
	return &MutationHandler{mutations: mutations, wallet: wallet, logger: logger}
}

type createMarketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    int64  `json:"deadline"` // unix seconds
	MetadataURI string `json:"metadata_uri"`
}

// CreateMarket submits a market creation and waits for finality.
// POST /api/markets
func (h *MutationHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, err := h.mutations.CreateMarket(r.Context(), service.CreateMarketInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    time.Unix(req.Deadline, 0).UTC(),
		MetadataURI: req.MetadataURI,
	}, h.wallet)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"tx_hash": hash})
}

type placeBetRequest struct {
	Side  uint8  `json:"side"`
	Stake string `json:"stake"` // base units, decimal string
}

// PlaceBet stakes tokens on one side of a market.
// POST /api/markets/{id}/bets
func (h *MutationHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stake, ok := new(big.Int).SetString(req.Stake, 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid stake")
		return
	}

	hash, err := h.mutations.PlaceBet(r.Context(), id, domain.Side(req.Side), stake)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": hash})
}

type evidenceURIRequest struct {
	URI string `json:"uri"`
}

// SubmitEvidence records evidence on a market. A multipart upload stores the
// blob first; a JSON body with a uri field records an already-hosted document
// directly.
// POST /api/markets/{id}/evidence
func (h *MutationHandler) SubmitEvidence(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req evidenceURIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		hash, err := h.mutations.SubmitEvidenceURI(r.Context(), id, req.URI)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"uri":     req.URI,
			"tx_hash": hash,
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "evidence file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	uri, hash, err := h.mutations.SubmitEvidence(r.Context(), id, header.Filename, file, contentType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"uri":     uri,
		"tx_hash": hash,
	})
}

// ApproveAllowance grants the registry the configured max allowance so later
// bets skip the approval transaction.
// POST /api/allowance
func (h *MutationHandler) ApproveAllowance(w http.ResponseWriter, r *http.Request) {
	hash, err := h.mutations.ApproveAllowance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": hash})
}

type resolveRequest struct {
	Outcome string `json:"outcome"` // "Yes", "No", or "Void"
}

// ResolveMarket settles a market. Restricted to allow-listed admins.
// POST /api/markets/{id}/resolve
func (h *MutationHandler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, err := h.mutations.ResolveMarket(r.Context(), id, domain.Outcome(req.Outcome), h.wallet)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": hash})
}
