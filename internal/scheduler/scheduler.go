// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic snapshots of the data documents.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/college-calendar/internal/metrics"
)

// backupPrefix marks snapshot directories created by the scheduler.
const backupPrefix = "backup-"

// backupLayout names snapshot directories so they sort chronologically.
const backupLayout = "20060102-150405.000"

// Snapshotter copies the current documents into a directory.
type Snapshotter interface {
	Snapshot(ctx context.Context, dir string) error
}

// Options configures the backup job.
type Options struct {
	Schedule string // standard 5-field cron expression
	Dir      string // parent directory of the snapshots
	Retain   int    // snapshots to keep, <= 0 keeps all
}

// Scheduler handles scheduled backups of the data documents.
type Scheduler struct {
	source  Snapshotter
	opts    Options
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a new scheduler instance. m may be nil.
func New(source Snapshotter, opts Options, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		source:  source,
		opts:    opts,
		cron:    cron.New(),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// ValidateSchedule checks that expr is a standard cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", expr, err)
	}
	return nil
}

// Start registers the backup job and starts the cron runner.
func (s *Scheduler) Start() error {
	if err := ValidateSchedule(s.opts.Schedule); err != nil {
		return err
	}

	_, err := s.cron.AddFunc(s.opts.Schedule, func() {
		if _, err := s.RunBackup(context.Background()); err != nil {
			s.logger.Error("scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.opts.Schedule, "dir", s.opts.Dir, "retain", s.opts.Retain)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running backup.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunBackup writes a snapshot into a new timestamped directory, prunes old
// snapshots and returns the new directory.
func (s *Scheduler) RunBackup(ctx context.Context) (string, error) {
	dir := filepath.Join(s.opts.Dir, backupPrefix+s.now().UTC().Format(backupLayout))

	if err := s.source.Snapshot(ctx, dir); err != nil {
		s.metrics.Backup(false)
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	s.metrics.Backup(true)
	s.logger.Info("backup written", "dir", dir)

	if err := s.prune(); err != nil {
		s.logger.Warn("failed to prune old backups", "error", err)
	}
	return dir, nil
}

// prune removes the oldest snapshots beyond the retention count.
func (s *Scheduler) prune() error {
	if s.opts.Retain <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) <= s.opts.Retain {
		return nil
	}

	sort.Strings(backups)
	for _, name := range backups[:len(backups)-s.opts.Retain] {
		if err := os.RemoveAll(filepath.Join(s.opts.Dir, name)); err != nil {
			return err
		}
		s.logger.Info("removed old backup", "dir", name)
	}
	return nil
}
