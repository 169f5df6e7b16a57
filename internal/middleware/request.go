// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/college-calendar/internal/logging"
)

// RequestLogContext adds the request id, method and path to every log
// record written with the request context. It should run after chi's
// RequestID middleware.
func RequestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			attrs = append([]slog.Attr{slog.String("request_id", id)}, attrs...)
		}

		ctx := logging.WithAttrs(r.Context(), attrs...)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
