// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

func TestDefaultCSRFConfig(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, []string{"https://calendar.college.edu"}, false)

	assert.Equal(t, testCSRFKey, cfg.AuthKey)
	assert.Equal(t, []string{"calendar.college.edu"}, cfg.TrustedOrigins)

	dev := DefaultCSRFConfig(testCSRFKey, nil, true)
	assert.Contains(t, dev.TrustedOrigins, "localhost:3000")
}

func TestOriginHosts(t *testing.T) {
	got := originHosts([]string{
		"https://a.example.edu",
		"http://localhost:5173",
		"b.example.edu",
		"*",
		"",
		"https://",
	})
	assert.Equal(t, []string{"a.example.edu", "localhost:5173", "b.example.edu"}, got)
}

func TestCSRF(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, []string{"https://trusted.example.edu"}, false))(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		method     string
		headers    map[string]string
		wantStatus int
	}{
		{"safe method cross-site", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusOK},
		{"same origin write", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusOK},
		{"non-browser write", http.MethodPost, nil, http.StatusOK},
		{"cross-site write", http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site", "Origin": "https://evil.example.com"}, http.StatusForbidden},
		{"trusted origin write", http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site", "Origin": "https://trusted.example.edu"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "https://api.example.edu/api/events", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
