// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/college-calendar/internal/chatbot"
	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

// MaxChatMessageLength is the longest accepted chat message, in characters.
const MaxChatMessageLength = 1000

// ChatService answers chat messages and keeps a transcript per key.
type ChatService struct {
	transcripts store.TranscriptStore
	limit       int
	policy      *bluemonday.Policy
	now         func() time.Time
}

// NewChatService creates a ChatService keeping at most limit entries per
// transcript. A non-positive limit uses model.DefaultChatHistoryLimit.
func NewChatService(transcripts store.TranscriptStore, limit int) *ChatService {
	if limit <= 0 {
		limit = model.DefaultChatHistoryLimit
	}
	return &ChatService{
		transcripts: transcripts,
		limit:       limit,
		policy:      bluemonday.StrictPolicy(),
		now:         time.Now,
	}
}

// Send records the message and the bot's reply in the transcript for key
// and returns the reply.
func (s *ChatService) Send(ctx context.Context, key, text string) (chatbot.Reply, error) {
	// Tags are stripped; the sanitizer's entity escaping is undone so the
	// transcript holds the literal text.
	clean := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
	if clean == "" {
		return chatbot.Reply{}, validation("Message is required")
	}
	if utf8.RuneCountInString(clean) > MaxChatMessageLength {
		return chatbot.Reply{}, validation("Message is too long")
	}

	reply := chatbot.Respond(clean)

	userEntry := model.ChatEntry{Role: model.ChatRoleUser, Text: clean, Timestamp: s.now().UTC()}
	botEntry := model.ChatEntry{Role: model.ChatRoleBot, Text: reply.Text, Timestamp: s.now().UTC()}

	if err := s.transcripts.Append(ctx, key, s.limit, userEntry, botEntry); err != nil {
		return chatbot.Reply{}, err
	}
	return reply, nil
}

// History returns the transcript for key, oldest first. A transcript that
// cannot be read is returned as empty.
func (s *ChatService) History(ctx context.Context, key string) ([]model.ChatEntry, error) {
	t, err := s.transcripts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if t.Messages == nil {
		return []model.ChatEntry{}, nil
	}
	return t.Messages, nil
}

// Clear deletes the transcript for key. Clearing a missing transcript succeeds.
func (s *ChatService) Clear(ctx context.Context, key string) error {
	return s.transcripts.Clear(ctx, key)
}
