// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"log/slog"

	"github.com/olegiv/college-calendar/internal/auth"
	"github.com/olegiv/college-calendar/internal/model"
)

// Default admin credentials
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "Administrator"
)

// seedUser is a bootstrap account with its plaintext password.
type seedUser struct {
	username string
	password string
	role     string
	email    string
	name     string
}

var seedUsers = []seedUser{
	{DefaultAdminUsername, DefaultAdminPassword, model.RoleAdmin, "admin@college.edu", DefaultAdminName},
	{"student1", "student123", model.RoleStudent, "student1@college.edu", "John Doe"},
	{"student2", "password123", model.RoleStudent, "student2@college.edu", "Jane Smith"},
}

// DefaultUsers builds the users document written when none exists yet.
func DefaultUsers() (model.UserDocument, error) {
	doc := model.UserDocument{Users: make([]model.User, 0, len(seedUsers))}

	for i, su := range seedUsers {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			return model.UserDocument{}, fmt.Errorf("hashing password for %s: %w", su.username, err)
		}
		doc.Users = append(doc.Users, model.User{
			ID:           int64(i + 1),
			Username:     su.username,
			PasswordHash: hash,
			Role:         su.role,
			Email:        su.email,
			Name:         su.name,
		})
		slog.Info("created default user",
			"id", i+1,
			"username", su.username,
			"role", su.role,
		)
	}

	return doc, nil
}

// DefaultEvents returns an empty events document.
func DefaultEvents() (model.EventDocument, error) {
	return model.EventDocument{Events: []model.Event{}}, nil
}

// DefaultReports returns an empty reports document.
func DefaultReports() (model.ReportDocument, error) {
	return model.ReportDocument{Reports: []model.Report{}}, nil
}
