// Package handler holds the HTTP endpoints of the market view and mutation
// API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinel errors to their HTTP status codes.
// Anything unmapped is a 502, since it means the chain or a collaborator
// failed rather than the request being at fault.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, domain.ErrMutationInFlight):
		writeError(w, http.StatusConflict, "a mutation for this operation is already in flight")
	case errors.Is(err, domain.ErrNoWallet):
		writeError(w, http.StatusPreconditionFailed, "no wallet configured")
	case errors.Is(err, domain.ErrTxReverted):
		writeError(w, http.StatusBadGateway, "transaction reverted")
	default:
		writeError(w, http.StatusBadGateway, "upstream failure")
	}
}

// marketIDParam parses the {id} path segment.
func marketIDParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrValidation
	}
	return id, nil
}
