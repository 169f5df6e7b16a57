// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/college-calendar/internal/middleware"
)

// Route paths.
const (
	RouteAPI            = "/api"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteUser           = "/user"
	RouteRegister       = "/register"
	RouteUsers          = "/users"
	RouteUserID         = "/users/{userId}"
	RouteChangePassword = "/change-password"
	RouteEvents         = "/events"
	RouteEventsByDate   = "/events/date/{eventDate}"
	RouteEventID        = "/events/{id}"
	RouteReports        = "/reports"
	RouteReportsByDate  = "/reports/date/{eventDate}"
	RouteReportDownload = "/reports/download/{id}"
	RouteReportID       = "/reports/{id}"
	RouteChatHistory    = "/chat/history"
	RouteChatMessage    = "/chat/message"
	RouteChatClear      = "/chat/clear"

	RouteHealth      = "/health"
	RouteHealthLive  = "/health/live"
	RouteHealthReady = "/health/ready"
)

// Handlers groups the handlers mounted by Register.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UsersHandler
	Events  *EventsHandler
	Reports *ReportsHandler
	Chat    *ChatHandler
	Health  *HealthHandler
}

// RouteOptions holds the optional per-route middleware.
type RouteOptions struct {
	// LoginProtection rate limits POST /api/login per IP.
	LoginProtection *middleware.LoginProtection

	// ChatLimiter rate limits the chat endpoints per IP.
	ChatLimiter *middleware.RateLimiter
}

// Register mounts the API and health routes on r. Session loading and
// identity resolution must already be installed on r.
func (h *Handlers) Register(r chi.Router, opts RouteOptions) {
	r.Get(RouteHealth, h.Health.Health)
	r.Get(RouteHealthLive, h.Health.Liveness)
	r.Get(RouteHealthReady, h.Health.Readiness)

	r.Route(RouteAPI, func(r chi.Router) {
		login := r.With()
		if opts.LoginProtection != nil {
			login = r.With(opts.LoginProtection.Middleware())
		}
		login.Post(RouteLogin, h.Auth.Login)

		// Public reads
		r.Get(RouteEvents, h.Events.List)
		r.Get(RouteEventsByDate, h.Events.ListByDate)
		r.Get(RouteReports, h.Reports.List)
		r.Get(RouteReportsByDate, h.Reports.ListByDate)
		r.Get(RouteReportDownload, h.Reports.Download)

		// Chat, available with or without login
		r.Group(func(r chi.Router) {
			if opts.ChatLimiter != nil {
				r.Use(opts.ChatLimiter.Middleware())
			}
			r.Get(RouteChatHistory, h.Chat.History)
			r.Post(RouteChatMessage, h.Chat.Send)
			r.Post(RouteChatClear, h.Chat.Clear)
		})

		// Session required; role checks happen per operation
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post(RouteLogout, h.Auth.Logout)
			r.Get(RouteUser, h.Auth.CurrentUser)
			r.Post(RouteChangePassword, h.Users.ChangePassword)

			r.Post(RouteRegister, h.Users.Register)
			r.Get(RouteUsers, h.Users.List)
			r.Delete(RouteUserID, h.Users.Delete)

			r.Post(RouteEvents, h.Events.Create)
			r.Put(RouteEventID, h.Events.Update)
			r.Delete(RouteEventID, h.Events.Delete)

			r.Post(RouteReports, h.Reports.Create)
			r.Delete(RouteReportID, h.Reports.Delete)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSONError(w, http.StatusNotFound, "Not found")
		})
	})
}
