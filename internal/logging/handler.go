// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that adds request-scoped
// attributes stored in the context and reports WARN and above to an observer.
package logging

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// WithAttrs returns a context whose log records carry attrs in addition to
// any attributes already stored in ctx.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	existing := Attrs(ctx)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// Attrs returns the attributes stored in ctx by WithAttrs.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// Observer is called for every record at or above the handler's observe level.
type Observer func(ctx context.Context, r slog.Record)

// ContextHandler is a slog.Handler that wraps another handler, adds the
// attributes stored in the record's context and notifies an observer of
// WARN and ERROR level records.
type ContextHandler struct {
	inner    slog.Handler
	observer Observer
	level    slog.Level // Minimum level passed to observer (default: WARN)
}

// NewContextHandler creates a ContextHandler wrapping inner. observer may be nil.
func NewContextHandler(inner slog.Handler, observer Observer) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		observer: observer,
		level:    slog.LevelWarn,
	}
}

// NewContextHandlerWithLevel creates a ContextHandler with a custom minimum
// observe level.
func NewContextHandlerWithLevel(inner slog.Handler, observer Observer, level slog.Level) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		observer: observer,
		level:    level,
	}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Attrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if h.observer != nil && r.Level >= h.level {
		h.observer(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		observer: h.observer,
		level:    h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		observer: h.observer,
		level:    h.level,
	}
}
