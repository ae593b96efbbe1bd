package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSeekerNotFound),
		errors.Is(err, domain.ErrMentorNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyMatched),
		errors.Is(err, domain.ErrSessionNotPending):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoEligibleMentors):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
