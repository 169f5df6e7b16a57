// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/service"
)

// UsersHandler handles user administration and password changes.
type UsersHandler struct {
	users   *service.UserService
	metrics *metrics.Metrics
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users *service.UserService, m *metrics.Metrics) *UsersHandler {
	return &UsersHandler{users: users, metrics: m}
}

// Register handles POST /api/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeOrReject(w, r, &in) {
		return
	}

	user, err := h.users.Register(r.Context(), middleware.GetIdentity(r), in)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to register user", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to list users", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"users": users})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/change-password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	err := h.users.ChangePassword(r.Context(), middleware.GetIdentity(r), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to change password", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Password changed successfully"})
}

// Delete handles DELETE /api/users/{userId}. A non-numeric id matches no
// user.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		userID = 0
	}

	deleted, err := h.users.Delete(r.Context(), middleware.GetIdentity(r), userID)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to delete user", err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"message": fmt.Sprintf(`User "%s" deleted successfully`, deleted.Username),
	})
}
