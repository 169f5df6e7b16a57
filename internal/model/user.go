// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the persisted records of the calendar backend
// (users, events, reports, chat transcripts) and the session identity.
package model

// User roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleAdmin, RoleStudent}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a registered account. The hash keeps the "password" key so
// documents written by earlier deployments still load.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	Role         string `json:"role"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

// Public returns the user without its password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
	}
}

// Identity returns the snapshot stored in a session at login.
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Name:     u.Name,
	}
}

// PublicUser is the API representation of a user.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Identity is the authenticated caller copied into the session at login.
// It is a snapshot and does not follow later edits of the user.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// IsAdmin returns true if the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserDocument is the on-disk users collection.
type UserDocument struct {
	Users []User `json:"users"`
}

// Find returns the index of the user with the given id, or -1.
func (d *UserDocument) Find(id int64) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByUsername returns the user with the given username, or nil.
func (d *UserDocument) FindByUsername(username string) *User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i]
		}
	}
	return nil
}

// NextID returns the highest existing id plus one (1 for an empty collection).
// Deleting the highest-id user makes its id available again.
func (d *UserDocument) NextID() int64 {
	var maxID int64
	for _, u := range d.Users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}
