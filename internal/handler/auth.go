// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/service"
)

// SessionStore starts and ends authenticated sessions.
type SessionStore interface {
	Login(ctx context.Context, id model.Identity) error
	Logout(ctx context.Context) error
}

// AuthHandler handles login, logout and the current-user endpoint.
type AuthHandler struct {
	users           *service.UserService
	sessions        SessionStore
	loginProtection *middleware.LoginProtection
	metrics         *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. loginProtection may be nil.
func NewAuthHandler(users *service.UserService, sessions SessionStore, lp *middleware.LoginProtection, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:           users,
		sessions:        sessions,
		loginProtection: lp,
		metrics:         m,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	if h.loginProtection != nil && req.Username != "" {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			slog.WarnContext(r.Context(), "login attempt on locked account", "username", req.Username)
			h.metrics.LoginAttempt(metrics.LoginBlocked)
			writeJSONError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthenticated {
			h.recordFailure(r, req.Username)
		}
		writeServiceError(w, r, h.metrics, "login failed", err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(user.Username)
	}

	if err := h.sessions.Login(r.Context(), user.Identity()); err != nil {
		slog.ErrorContext(r.Context(), "failed to start session", "error", err, "user_id", user.ID)
		writeJSONError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.metrics.LoginAttempt(metrics.LoginSuccess)
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)

	writeJSONSuccess(w, map[string]any{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

// recordFailure counts a failed login and locks the account once the
// configured number of failures is reached.
func (h *AuthHandler) recordFailure(r *http.Request, username string) {
	h.metrics.LoginAttempt(metrics.LoginFailure)
	if h.loginProtection == nil {
		return
	}
	if locked, lockout := h.loginProtection.RecordFailedAttempt(username); locked {
		slog.WarnContext(r.Context(), "account locked after failed logins",
			"username", username, "lockout", lockout.String())
	}
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)

	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "failed to destroy session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}

	if id != nil {
		slog.InfoContext(r.Context(), "user logged out", "user_id", id.UserID)
	}
	writeJSONSuccess(w, map[string]any{"message": "Logout successful"})
}

// CurrentUser handles GET /api/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		writeServiceError(w, r, h.metrics, "current user", service.ErrUnauthenticated)
		return
	}
	writeJSONSuccess(w, map[string]any{"user": id})
}

// formatDuration formats a lockout duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
