// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// login protection and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/college-calendar/internal/logging"
	"github.com/olegiv/college-calendar/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyIdentity ContextKey = "identity"
)

// IdentitySource resolves the identity of the session carried by a context.
type IdentitySource interface {
	Identity(ctx context.Context) (model.Identity, bool)
}

// LoadIdentity creates middleware that loads the session identity, if any,
// into the request context. It must run inside the session middleware.
func LoadIdentity(src IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := src.Identity(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
			ctx = logging.WithAttrs(ctx, slog.String("user", id.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the caller's identity from the request context.
// Returns nil for anonymous requests.
func GetIdentity(r *http.Request) *model.Identity {
	id, ok := r.Context().Value(ContextKeyIdentity).(model.Identity)
	if !ok {
		return nil
	}
	return &id
}

// RequireAuth creates middleware that rejects requests without a valid
// session with 401. It should be used after LoadIdentity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r) == nil {
			slog.InfoContext(r.Context(), "unauthenticated request", "method", r.Method, "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
