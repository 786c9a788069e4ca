// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/logger"
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	if err != nil && code >= 500 {
		logger.L().Error("http_error",
			"request_id", middleware.GetReqID(r.Context()),
			"code", code,
			"message", message,
			"error", err,
		)
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps gateway and analyzer errors to status codes
func respondWithServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, event.ErrValidation):
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, event.ErrStoreUnavailable):
		respondWithError(w, r, http.StatusServiceUnavailable, message, err)
	default:
		respondWithError(w, r, http.StatusInternalServerError, message, err)
	}
}
