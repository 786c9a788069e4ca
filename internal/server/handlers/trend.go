// internal/server/handlers/trend.go

package handlers

import (
	"net/http"

	"spatialintel/internal/domain/trend"
)

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	analyzer      trend.Analyzer
	defaultWindow int
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(analyzer trend.Analyzer, defaultWindow int) *TrendHandler {
	if defaultWindow <= 0 {
		defaultWindow = trend.DefaultWindowMinutes
	}

	return &TrendHandler{
		analyzer:      analyzer,
		defaultWindow: defaultWindow,
	}
}

// GetChanges compares event counts in a bounding box across two adjacent windows
func (h *TrendHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bbox, err := parseBBox(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid bounding box", err)
		return
	}

	windowMinutes, err := parseIntParam(q, "window_minutes", h.defaultWindow)
	if err != nil {
		respondWithServiceError(w, r, "Invalid window_minutes", err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), bbox, windowMinutes)
	if err != nil {
		respondWithServiceError(w, r, "Failed to compute trend", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
