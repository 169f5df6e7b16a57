// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Chat entry authors
const (
	ChatRoleUser = "user"
	ChatRoleBot  = "bot"
)

// DefaultChatHistoryLimit is the number of entries a transcript keeps.
const DefaultChatHistoryLimit = 100

// ChatEntry is one line of a chat transcript.
type ChatEntry struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the on-disk chat history of one identity.
type Transcript struct {
	Messages []ChatEntry `json:"messages"`
}

// Append adds entries with sequential ids and drops the oldest entries
// beyond limit.
func (t *Transcript) Append(limit int, entries ...ChatEntry) {
	next := t.lastID() + 1
	for _, e := range entries {
		e.ID = next
		next++
		t.Messages = append(t.Messages, e)
	}
	if limit > 0 && len(t.Messages) > limit {
		t.Messages = append([]ChatEntry(nil), t.Messages[len(t.Messages)-limit:]...)
	}
}

func (t *Transcript) lastID() int64 {
	if len(t.Messages) == 0 {
		return 0
	}
	return t.Messages[len(t.Messages)-1].ID
}
