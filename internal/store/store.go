// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olegiv/college-calendar/internal/model"
)

// Backing file names inside the data directory.
const (
	UsersFile   = "database.json"
	EventsFile  = "events.json"
	ReportsFile = "reports.json"
	ChatDir     = "chat"
)

// Collection names used in logs and errors.
const (
	CollectionUsers   = "users"
	CollectionEvents  = "events"
	CollectionReports = "reports"
)

// Store groups the three independent collections of the application.
type Store struct {
	Users   *Collection[model.UserDocument]
	Events  *Collection[model.EventDocument]
	Reports *Collection[model.ReportDocument]

	dataDir string
}

// Open creates the data directory if needed and returns a Store rooted there.
// Documents are created lazily on first load.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		Users:   NewCollection(CollectionUsers, filepath.Join(dataDir, UsersFile), DefaultUsers),
		Events:  NewCollection(CollectionEvents, filepath.Join(dataDir, EventsFile), DefaultEvents),
		Reports: NewCollection(CollectionReports, filepath.Join(dataDir, ReportsFile), DefaultReports),
		dataDir: dataDir,
	}, nil
}

// DataDir returns the directory holding the documents.
func (s *Store) DataDir() string {
	return s.dataDir
}

// ChatDir returns the directory holding per-identity chat transcripts.
func (s *Store) ChatDir() string {
	return filepath.Join(s.dataDir, ChatDir)
}

// Init loads every collection once so missing documents are created at
// startup instead of on the first request.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.Users.Load(ctx); err != nil {
		return err
	}
	if _, err := s.Events.Load(ctx); err != nil {
		return err
	}
	if _, err := s.Reports.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Snapshot copies all three documents into dir. Each document is copied
// under its own lock; the snapshot is not atomic across collections.
func (s *Store) Snapshot(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := s.Users.Snapshot(ctx, dir); err != nil {
		return err
	}
	if err := s.Events.Snapshot(ctx, dir); err != nil {
		return err
	}
	if err := s.Reports.Snapshot(ctx, dir); err != nil {
		return err
	}
	return nil
}
