// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

var (
	adminID   = &model.Identity{UserID: 1, Username: "admin", Role: model.RoleAdmin, Name: "Administrator"}
	studentID = &model.Identity{UserID: 2, Username: "student1", Role: model.RoleStudent, Name: "John Doe"}
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("store.Init: %v", err)
	}
	return s
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("KindOf(%v) = %s, want %s", err, got, want)
	}
}
