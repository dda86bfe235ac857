package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps ledger and link failures to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if code := ledger.Code(err); code != "" {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, ledger.ErrUnauthorized):
			status = http.StatusForbidden
		case errors.Is(err, ledger.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ledger.ErrAlreadyExists):
			status = http.StatusConflict
		}
		writeError(w, status, code, err.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrNonceMismatch),
		errors.Is(err, service.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	h.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal", "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid request body")
		return false
	}
	return true
}
