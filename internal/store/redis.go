// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olegiv/college-calendar/internal/model"
)

// RedisTranscripts keeps transcripts in Redis lists, one list per key,
// so several server processes can share chat history.
type RedisTranscripts struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures the Redis transcript store.
type RedisOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "calendar:")
	Prefix string

	// ConnectTimeout is the timeout for the initial ping
	ConnectTimeout time.Duration
}

// NewRedisTranscripts connects to Redis and verifies the connection.
func NewRedisTranscripts(opts RedisOptions) (*RedisTranscripts, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisTranscripts{client: client, prefix: opts.Prefix}, nil
}

// Ping checks the Redis connection.
func (s *RedisTranscripts) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisTranscripts) listKey(key string) string {
	return s.prefix + "chat:" + key
}

func (s *RedisTranscripts) seqKey(key string) string {
	return s.prefix + "chat:" + key + ":seq"
}

// Load implements TranscriptStore. Unreadable entries are skipped.
func (s *RedisTranscripts) Load(ctx context.Context, key string) (model.Transcript, error) {
	tr := model.Transcript{Messages: []model.ChatEntry{}}
	if !ValidTranscriptKey(key) {
		return tr, ErrInvalidTranscriptKey
	}

	raw, err := s.client.LRange(ctx, s.listKey(key), 0, -1).Result()
	if err != nil {
		slog.WarnContext(ctx, "chat history unreadable, starting empty", "key", key, "error", err)
		return tr, nil
	}

	for _, item := range raw {
		var e model.ChatEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			slog.WarnContext(ctx, "skipping corrupt chat entry", "key", key, "error", err)
			continue
		}
		tr.Messages = append(tr.Messages, e)
	}
	return tr, nil
}

// Append implements TranscriptStore.
func (s *RedisTranscripts) Append(ctx context.Context, key string, limit int, entries ...model.ChatEntry) error {
	if !ValidTranscriptKey(key) {
		return ErrInvalidTranscriptKey
	}
	if len(entries) == 0 {
		return nil
	}

	last, err := s.client.IncrBy(ctx, s.seqKey(key), int64(len(entries))).Result()
	if err != nil {
		return &StorageError{Collection: "chat", Op: "write", Err: err}
	}

	values := make([]any, 0, len(entries))
	first := last - int64(len(entries)) + 1
	for i, e := range entries {
		e.ID = first + int64(i)
		data, err := json.Marshal(e)
		if err != nil {
			return &StorageError{Collection: "chat", Op: "encode", Err: err}
		}
		values = append(values, data)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.listKey(key), values...)
		if limit > 0 {
			pipe.LTrim(ctx, s.listKey(key), int64(-limit), -1)
		}
		return nil
	})
	if err != nil {
		return &StorageError{Collection: "chat", Op: "write", Err: err}
	}
	return nil
}

// Clear implements TranscriptStore.
func (s *RedisTranscripts) Clear(ctx context.Context, key string) error {
	if !ValidTranscriptKey(key) {
		return ErrInvalidTranscriptKey
	}
	if err := s.client.Del(ctx, s.listKey(key), s.seqKey(key)).Err(); err != nil {
		return &StorageError{Collection: "chat", Op: "delete", Err: err}
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisTranscripts) Close() error {
	return s.client.Close()
}
