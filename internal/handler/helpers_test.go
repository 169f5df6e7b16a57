// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/middleware"
	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/service"
	"github.com/olegiv/college-calendar/internal/session"
	"github.com/olegiv/college-calendar/internal/store"
	"github.com/olegiv/college-calendar/internal/version"
)

// testEnv is a running API backed by a temporary data directory.
type testEnv struct {
	server  *httptest.Server
	store   *store.Store
	metrics *metrics.Metrics
	lp      *middleware.LoginProtection
}

type envOption func(*testEnvConfig)

type testEnvConfig struct {
	deps map[string]Pinger
	lp   middleware.LoginProtectionConfig
}

func withPinger(name string, p Pinger) envOption {
	return func(c *testEnvConfig) {
		if c.deps == nil {
			c.deps = map[string]Pinger{}
		}
		c.deps[name] = p
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := testEnvConfig{lp: middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
	}}
	for _, o := range opts {
		o(&cfg)
	}

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Init(context.Background()))

	transcripts, err := store.NewFileTranscripts(st.ChatDir())
	require.NoError(t, err)

	sessions, err := session.New(session.Options{IsDev: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	lp := middleware.NewLoginProtection(cfg.lp)
	t.Cleanup(lp.Stop)

	m := metrics.New()
	ids := store.NewIDGenerator()
	users := service.NewUserService(st.Users)

	h := &Handlers{
		Auth:    NewAuthHandler(users, sessions, lp, m),
		Users:   NewUsersHandler(users, m),
		Events:  NewEventsHandler(service.NewEventService(st.Events, ids), m),
		Reports: NewReportsHandler(service.NewReportService(st.Reports, ids), m),
		Chat:    NewChatHandler(service.NewChatService(transcripts, model.DefaultChatHistoryLimit), sessions, m),
		Health:  NewHealthHandler(st.DataDir(), cfg.deps, version.Get()),
	}

	r := chi.NewRouter()
	r.Use(sessions.LoadAndSave)
	r.Use(middleware.LoadIdentity(sessions))
	h.Register(r, RouteOptions{LoginProtection: lp})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: st, metrics: m, lp: lp}
}

// client returns an HTTP client with its own cookie jar, i.e. its own session.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// do sends a JSON request and decodes the JSON response.
func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any) (int, map[string]any) {
	t.Helper()

	resp := e.raw(t, c, method, path, body)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	}
	return resp.StatusCode, out
}

func (e *testEnv) raw(t *testing.T, c *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(body)
			require.NoError(t, err)
			rdr = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, e.server.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

// login returns a client logged in with the given bootstrap account.
func (e *testEnv) login(t *testing.T, username, password, role string) *http.Client {
	t.Helper()

	c := e.client(t)
	status, body := e.do(t, c, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	})
	require.Equal(t, http.StatusOK, status, "login as %s: %v", username, body)
	return c
}

func (e *testEnv) admin(t *testing.T) *http.Client {
	return e.login(t, "admin", "admin123", model.RoleAdmin)
}

func (e *testEnv) student(t *testing.T) *http.Client {
	return e.login(t, "student1", "student123", model.RoleStudent)
}

// object returns body[key] as a JSON object.
func object(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()

	v, ok := body[key].(map[string]any)
	require.True(t, ok, "%s is not an object in %v", key, body)
	return v
}

// list returns body[key] as a JSON array.
func list(t *testing.T, body map[string]any, key string) []any {
	t.Helper()

	v, ok := body[key].([]any)
	require.True(t, ok, "%s is not an array in %v", key, body)
	return v
}
