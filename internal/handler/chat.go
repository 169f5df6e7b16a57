// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"

	"github.com/olegiv/college-calendar/internal/metrics"
	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/service"
)

// ChatKeys issues the transcript key of the current session.
type ChatKeys interface {
	ChatKey(ctx context.Context) string
	EnsureChatKey(ctx context.Context) string
}

// ChatHandler handles the chatbot. Transcripts are kept per session,
// whether or not the caller is logged in.
type ChatHandler struct {
	chat    *service.ChatService
	keys    ChatKeys
	metrics *metrics.Metrics
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService, keys ChatKeys, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{chat: chat, keys: keys, metrics: m}
}

// History handles GET /api/chat/history. A session that has not chatted
// yet gets an empty history and no key.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	key := h.keys.ChatKey(r.Context())
	if key == "" {
		writeJSONSuccess(w, map[string]any{"messages": []model.ChatEntry{}})
		return
	}

	messages, err := h.chat.History(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to load chat history", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"messages": messages})
}

type chatMessageRequest struct {
	Message string `json:"message"`
}

// Send handles POST /api/chat/message.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	reply, err := h.chat.Send(r.Context(), h.keys.EnsureChatKey(r.Context()), req.Message)
	if err != nil {
		writeServiceError(w, r, h.metrics, "failed to record chat message", err)
		return
	}

	h.metrics.ChatReply(string(reply.Category))
	writeJSONSuccess(w, map[string]any{
		"reply":    reply.Text,
		"category": reply.Category,
	})
}

// Clear handles POST /api/chat/clear.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if key := h.keys.ChatKey(r.Context()); key != "" {
		if err := h.chat.Clear(r.Context(), key); err != nil {
			writeServiceError(w, r, h.metrics, "failed to clear chat history", err)
			return
		}
	}
	writeJSONSuccess(w, map[string]any{"message": "Chat history cleared"})
}
