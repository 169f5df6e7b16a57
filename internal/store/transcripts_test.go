// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/college-calendar/internal/model"
)

func newFileTranscripts(t *testing.T) *FileTranscripts {
	t.Helper()
	s, err := NewFileTranscripts(filepath.Join(t.TempDir(), ChatDir))
	require.NoError(t, err)
	return s
}

func chatPair(text string) []model.ChatEntry {
	now := time.Now().UTC()
	return []model.ChatEntry{
		{Role: model.ChatRoleUser, Text: text, Timestamp: now},
		{Role: model.ChatRoleBot, Text: "reply to " + text, Timestamp: now},
	}
}

func TestFileTranscripts_MissingIsEmpty(t *testing.T) {
	s := newFileTranscripts(t)

	tr, err := s.Load(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.NotNil(t, tr.Messages)
	assert.Empty(t, tr.Messages)
}

func TestFileTranscripts_CorruptIsEmpty(t *testing.T) {
	s := newFileTranscripts(t)
	require.NoError(t, os.WriteFile(s.path("visitor-1"), []byte("garbage"), 0o644))

	tr, err := s.Load(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, tr.Messages)
}

func TestFileTranscripts_AppendAndLoad(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "visitor-1", model.DefaultChatHistoryLimit, chatPair("hello")...))

	tr, err := s.Load(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, model.ChatRoleUser, tr.Messages[0].Role)
	assert.Equal(t, "hello", tr.Messages[0].Text)
	assert.Equal(t, model.ChatRoleBot, tr.Messages[1].Role)
	assert.Equal(t, int64(2), tr.Messages[1].ID)
}

func TestFileTranscripts_NeverExceedsLimit(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	for i := 0; i < 80; i++ {
		require.NoError(t, s.Append(ctx, "visitor-1", model.DefaultChatHistoryLimit, chatPair("msg")...))
	}

	tr, err := s.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Len(t, tr.Messages, model.DefaultChatHistoryLimit)
	assert.Equal(t, int64(160), tr.Messages[len(tr.Messages)-1].ID)
}

func TestFileTranscripts_ClearIsIdempotent(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx, "never-used"))

	require.NoError(t, s.Append(ctx, "visitor-1", 10, chatPair("hi")...))
	require.NoError(t, s.Clear(ctx, "visitor-1"))
	require.NoError(t, s.Clear(ctx, "visitor-1"))

	tr, err := s.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, tr.Messages)
}

func TestFileTranscripts_KeysAreIsolated(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "a", 10, chatPair("for a")...))

	tr, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, tr.Messages)
}

func TestFileTranscripts_InvalidKey(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a/b", "with space"} {
		_, err := s.Load(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidTranscriptKey, key)
		assert.ErrorIs(t, s.Append(ctx, key, 10, chatPair("x")...), ErrInvalidTranscriptKey, key)
		assert.ErrorIs(t, s.Clear(ctx, key), ErrInvalidTranscriptKey, key)
	}
}

func TestFileTranscripts_LockSetIsBounded(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	seen := map[*sync.Mutex]struct{}{}
	for i := range 5000 {
		key := fmt.Sprintf("visitor-%d", i)
		_, err := s.Load(ctx, key)
		require.NoError(t, err)

		mu := s.lock(key)
		assert.Same(t, mu, s.lock(key), "a key always maps to the same mutex")
		seen[mu] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), transcriptLockStripes)
}

func TestFileTranscripts_ConcurrentAppends(t *testing.T) {
	s := newFileTranscripts(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, "shared", 1000, chatPair(fmt.Sprintf("msg %d", i))...))
		}()
	}
	wg.Wait()

	tr, err := s.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, tr.Messages, 40)
}
