// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session maps the session cookie to the authenticated identity.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"

	"github.com/olegiv/college-calendar/internal/model"
)

// DefaultLifetime is how long a session lives after it is created.
const DefaultLifetime = 24 * time.Hour

// Session keys for the identity snapshot and chat transcript key.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
	KeyName     = "name"
	KeyChat     = "chat_key"
)

// Options configures the session manager.
type Options struct {
	// Lifetime is the absolute session lifetime from creation (default 24h).
	Lifetime time.Duration

	// IsDev disables secure cookies for plain-HTTP development.
	IsDev bool

	// DBPath enables the SQLite store so sessions survive restarts.
	// Sessions are kept in memory when empty.
	DBPath string
}

// Manager wraps scs with identity-aware helpers.
type Manager struct {
	*scs.SessionManager
	db *sql.DB
}

// New creates a session manager.
func New(opts Options) (*Manager, error) {
	sm := scs.New()

	m := &Manager{SessionManager: sm}

	if opts.DBPath != "" {
		db, err := openDB(opts.DBPath)
		if err != nil {
			return nil, err
		}
		m.db = db
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}

	// Configure session
	sm.Lifetime = opts.Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !opts.IsDev // Secure cookies in production only
	if !opts.IsDev {
		sm.Cookie.Name = "__Host-session"
	}

	return m, nil
}

// Login renews the session token and stores the identity snapshot.
func (m *Manager) Login(ctx context.Context, id model.Identity) error {
	// Regenerate session ID to prevent session fixation
	if err := m.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	m.Put(ctx, KeyUserID, id.UserID)
	m.Put(ctx, KeyUsername, id.Username)
	m.Put(ctx, KeyRole, id.Role)
	m.Put(ctx, KeyName, id.Name)
	return nil
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context) error {
	return m.Destroy(ctx)
}

// Identity returns the identity stored at login, or false for an
// anonymous or expired session.
func (m *Manager) Identity(ctx context.Context) (model.Identity, bool) {
	userID := m.GetInt64(ctx, KeyUserID)
	if userID == 0 {
		return model.Identity{}, false
	}

	return model.Identity{
		UserID:   userID,
		Username: m.GetString(ctx, KeyUsername),
		Role:     m.GetString(ctx, KeyRole),
		Name:     m.GetString(ctx, KeyName),
	}, true
}

// ChatKey returns the session's transcript key, or "" if none was issued yet.
func (m *Manager) ChatKey(ctx context.Context) string {
	return m.GetString(ctx, KeyChat)
}

// EnsureChatKey returns the session's transcript key, issuing one if needed.
func (m *Manager) EnsureChatKey(ctx context.Context) string {
	if key := m.ChatKey(ctx); key != "" {
		return key
	}
	key := uuid.NewString()
	m.Put(ctx, KeyChat, key)
	return key
}

// Close releases the session database, if any.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Ping checks the session database. It is a no-op for in-memory sessions.
func (m *Manager) Ping(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	return m.db.PingContext(ctx)
}
