// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/service"
)

// EventsHandler handles calendar events.
type EventsHandler struct {
	events  *service.EventService
	metrics *metrics.Metrics
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService, m *metrics.Metrics) *EventsHandler {
	return &EventsHandler{events: events, metrics: m}
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to list events", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"events": events})
}

// ListByDate handles GET /api/events/date/{eventDate}.
func (h *EventsHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListByDate(r.Context(), chi.URLParam(r, "eventDate"))
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to list events", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"events": events})
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.EventInput
	if !decodeOrReject(w, r, &in) {
		return
	}

	event, err := h.events.Create(r.Context(), middleware.GetIdentity(r), in)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to create event", err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"message": "Event created successfully",
		"event":   event,
	})
}

// Update handles PUT /api/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd service.EventUpdate
	if !decodeOrReject(w, r, &upd) {
		return
	}

	event, err := h.events.Update(r.Context(), middleware.GetIdentity(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to update event", err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"message": "Event updated successfully",
		"event":   event,
	})
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), middleware.GetIdentity(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.metrics, "failed to delete event", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Event deleted successfully"})
}
