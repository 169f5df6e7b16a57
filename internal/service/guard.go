// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "github.com/olegiv/college-calendar/internal/model"

// Require checks that the caller is authenticated and, if role is not empty,
// holds that role. A nil identity means no valid session.
func Require(id *model.Identity, role string) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if role != "" && id.Role != role {
		return ErrForbidden
	}
	return nil
}

// requireAdmin is Require with the admin role and an operation-specific
// denial message.
func requireAdmin(id *model.Identity, denied string) error {
	if err := Require(id, model.RoleAdmin); err != nil {
		if KindOf(err) == KindForbidden {
			return forbidden(denied)
		}
		return err
	}
	return nil
}
