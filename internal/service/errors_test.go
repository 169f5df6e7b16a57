// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", validation("bad"), KindValidation},
		{"wrapped forbidden", fmt.Errorf("op: %w", ErrForbidden), KindForbidden},
		{"not found", ErrEventNotFound, KindNotFound},
		{"storage", &store.StorageError{Collection: "users", Op: "read", Err: errors.New("boom")}, KindStorage},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(ErrSelfDelete); got != "Cannot delete your own account" {
		t.Errorf("MessageOf(ErrSelfDelete) = %q", got)
	}
	if got := MessageOf(errors.New("disk on fire")); got != "Internal server error" {
		t.Errorf("MessageOf(plain) = %q, want generic message", got)
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrUserNotFound)
	if !errors.Is(err, ErrUserNotFound) {
		t.Error("errors.Is should match wrapped sentinel")
	}
	if errors.Is(err, ErrEventNotFound) {
		t.Error("errors.Is should not match a different message of the same kind")
	}
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name string
		id   *model.Identity
		role string
		want error
	}{
		{"anonymous", nil, "", ErrUnauthenticated},
		{"anonymous admin op", nil, model.RoleAdmin, ErrUnauthenticated},
		{"any session", studentID, "", nil},
		{"wrong role", studentID, model.RoleAdmin, ErrForbidden},
		{"admin", adminID, model.RoleAdmin, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.id, tt.role)
			if !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("Require() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRequireAdminMessage(t *testing.T) {
	err := requireAdmin(studentID, "Only admins can create events")
	assertKind(t, err, KindForbidden)
	if MessageOf(err) != "Only admins can create events" {
		t.Errorf("message = %q", MessageOf(err))
	}

	assertKind(t, requireAdmin(nil, "x"), KindUnauthenticated)
}
