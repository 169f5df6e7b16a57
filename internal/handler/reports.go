// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/service"
)

// ReportsHandler handles event reports.
type ReportsHandler struct {
	reports *service.ReportService
	metrics *metrics.Metrics
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports *service.ReportService, m *metrics.Metrics) *ReportsHandler {
	return &ReportsHandler{reports: reports, metrics: m}
}

// List handles GET /api/reports.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to list reports", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"reports": reports})
}

// ListByDate handles GET /api/reports/date/{eventDate}.
func (h *ReportsHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListByDate(r.Context(), chi.URLParam(r, "eventDate"))
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to list reports", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"reports": reports})
}

// Create handles POST /api/reports.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ReportInput
	if !decodeOrReject(w, r, &in) {
		return
	}

	report, err := h.reports.Create(r.Context(), middleware.GetIdentity(r), in)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to submit report", err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"message": "Report submitted successfully",
		"report":  report,
	})
}

// Delete handles DELETE /api/reports/{id}.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Delete(r.Context(), middleware.GetIdentity(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.metrics, "failed to delete report", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Report deleted successfully"})
}

// Download handles GET /api/reports/download/{id} and returns the report
// as a plain-text attachment.
func (h *ReportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dl, err := h.reports.Download(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.Filename))
	if _, err := w.Write([]byte(dl.Content)); err != nil {
		slog.WarnContext(r.Context(), "failed to write report download", "report_id", id, "error", err)
	}
}
