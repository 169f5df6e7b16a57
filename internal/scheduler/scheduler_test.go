// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/college-calendar/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("store.Init: %v", err)
	}
	return s
}

type failingSource struct{}

func (failingSource) Snapshot(context.Context, string) error {
	return errors.New("disk full")
}

func TestNew(t *testing.T) {
	logger := slog.Default()

	s := New(failingSource{}, Options{Schedule: "@daily"}, logger, nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger != logger {
		t.Error("New() scheduler has wrong logger")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(failingSource{}, Options{Schedule: "0 3 * * *", Dir: t.TempDir()}, slog.Default(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("expected 1 cron entry, got %d", len(s.cron.Entries()))
	}

	s.Stop()
}

func TestScheduler_StartInvalidSchedule(t *testing.T) {
	s := New(failingSource{}, Options{Schedule: "every tuesday"}, slog.Default(), nil)

	if err := s.Start(); err == nil {
		t.Fatal("Start() with invalid schedule should fail")
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 3 * * *", false},
		{"*/15 * * * *", false},
		{"@hourly", false},
		{"", true},
		{"61 * * * *", true},
		{"* * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := ValidateSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSchedule(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestRunBackup(t *testing.T) {
	st := newTestStore(t)
	backupDir := t.TempDir()
	s := New(st, Options{Dir: backupDir, Retain: 7}, slog.Default(), nil)

	dir, err := s.RunBackup(context.Background())
	if err != nil {
		t.Fatalf("RunBackup() error = %v", err)
	}

	for _, name := range []string{store.UsersFile, store.EventsFile, store.ReportsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("snapshot missing %s: %v", name, err)
		}
	}
}

func TestRunBackup_Prunes(t *testing.T) {
	st := newTestStore(t)
	backupDir := t.TempDir()
	s := New(st, Options{Dir: backupDir, Retain: 2}, slog.Default(), nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var dirs []string
	for i := range 4 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		dir, err := s.RunBackup(context.Background())
		if err != nil {
			t.Fatalf("RunBackup() #%d error = %v", i, err)
		}
		dirs = append(dirs, dir)
	}

	// An unrelated directory is left alone.
	if err := os.Mkdir(filepath.Join(backupDir, "manual"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 2 backups plus manual dir, got %d entries", len(entries))
	}
	for _, old := range dirs[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("old backup %s should be pruned", old)
		}
	}
	for _, kept := range dirs[2:] {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("recent backup %s should be kept: %v", kept, err)
		}
	}
}

func TestRunBackup_SourceFailure(t *testing.T) {
	backupDir := t.TempDir()
	s := New(failingSource{}, Options{Dir: backupDir, Retain: 1}, slog.Default(), nil)

	if _, err := s.RunBackup(context.Background()); err == nil {
		t.Fatal("RunBackup() should fail when the snapshot fails")
	}

	entries, _ := os.ReadDir(backupDir)
	if len(entries) != 0 {
		t.Errorf("failed backup left %d entries behind", len(entries))
	}
}
