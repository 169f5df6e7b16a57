// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/service"
	"github.com/olegiv/college-calendar/internal/store"
)

func TestWriteServiceError(t *testing.T) {
	storageErr := &store.StorageError{Collection: "events", Op: "save", Err: errors.New("disk full")}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", service.ErrSelfDelete, http.StatusBadRequest, "Cannot delete your own account"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, "Not authenticated"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "Access denied"},
		{"not found", fmt.Errorf("lookup: %w", service.ErrEventNotFound), http.StatusNotFound, "Event not found"},
		{"storage", storageErr, http.StatusInternalServerError, "Internal server error"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/events", nil)

			writeServiceError(w, r, metrics.New(), "test", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}
}

func TestWriteServiceErrorCountsStorageFailures(t *testing.T) {
	m := metrics.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	writeServiceError(httptest.NewRecorder(), r, m, "test", &store.StorageError{Collection: "users", Op: "load", Err: errors.New("eio")})
	writeServiceError(httptest.NewRecorder(), r, m, "test", service.ErrUserNotFound)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "calendar_storage_errors_total 1")
}

func TestWriteServiceErrorNilMetrics(t *testing.T) {
	w := httptest.NewRecorder()
	writeServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil, "test", errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, "x", false},
		{"empty", ``, "", false},
		{"malformed", `{"name":`, "", true},
		{"wrong type", `{"name":1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), r, &p)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestWriteJSONSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONSuccess(w, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}
