// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for logins, chat replies,
// storage failures, backups and warning-level log records.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "calendar"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginBlocked = "blocked"
)

// Metrics holds the application's collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	logins        *prometheus.CounterVec
	chatReplies   *prometheus.CounterVec
	storageErrors prometheus.Counter
	backups       *prometheus.CounterVec
	logRecords    *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chatbot replies by matched category.",
		}, []string{"category"}),
		storageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Requests that failed because a document could not be read or written.",
		}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Scheduled document snapshots by result.",
		}, []string{"result"}),
		logRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_records_total",
			Help:      "Log records at WARN level and above.",
		}, []string{"level"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.chatReplies,
		m.storageErrors,
		m.backups,
		m.logRecords,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// LoginAttempt counts a login attempt with the given result.
func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// ChatReply counts a chatbot reply in category.
func (m *Metrics) ChatReply(category string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(category).Inc()
}

// StorageError counts a storage failure.
func (m *Metrics) StorageError() {
	if m == nil {
		return
	}
	m.storageErrors.Inc()
}

// Backup counts a finished snapshot.
func (m *Metrics) Backup(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.backups.WithLabelValues(result).Inc()
}

// LogRecord counts a log record at level.
func (m *Metrics) LogRecord(level string) {
	if m == nil {
		return
	}
	m.logRecords.WithLabelValues(level).Inc()
}
