// internal/server/handlers/event.go

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"spatialintel/internal/domain/event"
	"spatialintel/internal/logger"
	"spatialintel/internal/service/listing"
)

const maxBodyBytes = 1 << 20

// EventHandler handles event ingestion and listing requests
type EventHandler struct {
	gateway event.Gateway
}

// NewEventHandler creates a new event handler
func NewEventHandler(gateway event.Gateway) *EventHandler {
	return &EventHandler{
		gateway: gateway,
	}
}

// CreateEvent persists a point and returns its id
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	type createEventRequest struct {
		Lon *float64 `json:"lon"`
		Lat *float64 `json:"lat"`
	}

	var req createEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Lon == nil || req.Lat == nil {
		respondWithError(w, r, http.StatusBadRequest, "lon and lat are required", nil)
		return
	}

	id, err := h.gateway.Create(r.Context(), *req.Lon, *req.Lat)
	if err != nil {
		respondWithServiceError(w, r, "Failed to create event", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListEvents returns the most recent events anywhere
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, "Invalid limit", err)
		return
	}

	h.list(w, r, event.Query{Limit: limit}, false)
}

// ListEventsInBBox returns the most recent events inside a bounding box
func (h *EventHandler) ListEventsInBBox(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bbox, err := parseBBox(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid bounding box", err)
		return
	}

	limit, err := parseLimit(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid limit", err)
		return
	}

	h.list(w, r, event.Query{BBox: &bbox, Limit: limit}, false)
}

// ListEventsInBBoxTime returns events inside a bounding box created in [start, end)
func (h *EventHandler) ListEventsInBBoxTime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bbox, err := parseBBox(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid bounding box", err)
		return
	}

	window, err := parseTimeWindow(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid time range", err)
		return
	}

	limit, err := parseLimit(q)
	if err != nil {
		respondWithServiceError(w, r, "Invalid limit", err)
		return
	}

	h.list(w, r, event.Query{BBox: &bbox, Window: &window, Limit: limit}, true)
}

// Health reports whether the store answers
func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.Health(r.Context()); err != nil {
		logger.L().Warn("health_check_failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ok":    false,
			"error": "Store unavailable",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request, q event.Query, withTimestamp bool) {
	events, err := h.gateway.Query(r.Context(), q)
	if err != nil {
		respondWithServiceError(w, r, "Failed to list events", err)
		return
	}

	respondWithJSON(w, http.StatusOK, listing.FromEvents(events, withTimestamp))
}
