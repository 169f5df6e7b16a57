// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/service"
)

// statusFor maps a service error kind to an HTTP status code.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the JSON error response for err. Storage and
// internal failures are logged and counted; their details stay out of the
// response.
func writeServiceError(w http.ResponseWriter, r *http.Request, m *metrics.Metrics, logMsg string, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), logMsg, "error", err, "kind", kind.String())
		if kind == service.KindStorage {
			m.StorageError()
		}
	}

	writeJSONError(w, status, service.MessageOf(err))
}
