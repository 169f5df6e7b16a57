// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/olegiv/college-calendar/internal/model"
)

// ErrInvalidTranscriptKey is returned for keys that cannot name a transcript.
var ErrInvalidTranscriptKey = errors.New("invalid transcript key")

// transcriptKeyPattern limits keys to characters safe in file names and Redis keys.
var transcriptKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// transcriptLockStripes is the number of mutexes shared by all transcript keys.
const transcriptLockStripes = 64

// ValidTranscriptKey reports whether key can name a transcript.
func ValidTranscriptKey(key string) bool {
	return transcriptKeyPattern.MatchString(key)
}

// TranscriptStore keeps one chat transcript per identity key.
//
// Load is lenient: a transcript that cannot be read or parsed is reported
// as empty rather than as an error, unlike the collections.
type TranscriptStore interface {
	Load(ctx context.Context, key string) (model.Transcript, error)
	Append(ctx context.Context, key string, limit int, entries ...model.ChatEntry) error
	Clear(ctx context.Context, key string) error
}

// FileTranscripts stores each transcript as a JSON file in a directory.
//
// Keys are hashed onto a fixed set of mutexes, so the lock set stays the
// same size however many sessions chat.
type FileTranscripts struct {
	dir   string
	locks [transcriptLockStripes]sync.Mutex
}

// NewFileTranscripts creates a file-backed transcript store in dir.
func NewFileTranscripts(dir string) (*FileTranscripts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Collection: "chat", Op: "initialize", Err: err}
	}
	return &FileTranscripts{dir: dir}, nil
}

func (s *FileTranscripts) lock(key string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(key)%transcriptLockStripes]
}

func (s *FileTranscripts) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load implements TranscriptStore.
func (s *FileTranscripts) Load(ctx context.Context, key string) (model.Transcript, error) {
	if !ValidTranscriptKey(key) {
		return model.Transcript{}, ErrInvalidTranscriptKey
	}
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	return s.read(ctx, key), nil
}

// read returns the stored transcript or an empty one. Callers must hold the key lock.
func (s *FileTranscripts) read(ctx context.Context, key string) model.Transcript {
	tr := model.Transcript{Messages: []model.ChatEntry{}}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "chat history unreadable, starting empty", "key", key, "error", err)
		}
		return tr
	}
	if err := json.Unmarshal(data, &tr); err != nil {
		slog.WarnContext(ctx, "chat history corrupt, starting empty", "key", key, "error", err)
		return model.Transcript{Messages: []model.ChatEntry{}}
	}
	if tr.Messages == nil {
		tr.Messages = []model.ChatEntry{}
	}
	return tr
}

// Append implements TranscriptStore.
func (s *FileTranscripts) Append(ctx context.Context, key string, limit int, entries ...model.ChatEntry) error {
	if !ValidTranscriptKey(key) {
		return ErrInvalidTranscriptKey
	}
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tr := s.read(ctx, key)
	tr.Append(limit, entries...)

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return &StorageError{Collection: "chat", Op: "encode", Err: err}
	}
	if err := writeFileAtomic(s.path(key), data); err != nil {
		return &StorageError{Collection: "chat", Op: "write", Err: err}
	}
	return nil
}

// Clear implements TranscriptStore. Clearing a missing transcript succeeds.
func (s *FileTranscripts) Clear(_ context.Context, key string) error {
	if !ValidTranscriptKey(key) {
		return ErrInvalidTranscriptKey
	}
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Collection: "chat", Op: "delete", Err: err}
	}
	return nil
}
