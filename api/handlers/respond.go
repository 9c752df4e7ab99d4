package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"soporte-itsm/core/faults"
	"soporte-itsm/core/utils"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps the error taxonomy to HTTP: validation -> 400,
// not found -> 404, everything else -> 500 with a generic body so internal
// detail never leaks.
func respondServiceError(w http.ResponseWriter, logger *utils.Logger, err error) {
	switch {
	case errors.Is(err, faults.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, faults.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		if logger != nil {
			logger.Errorf("internal error: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
