// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/olegiv/college-calendar/internal/auth"
	"github.com/olegiv/college-calendar/internal/model"
	"github.com/olegiv/college-calendar/internal/store"
)

// UserService manages accounts and authentication.
type UserService struct {
	users store.Repository[model.UserDocument]
}

// NewUserService creates a UserService over the users collection.
func NewUserService(users store.Repository[model.UserDocument]) *UserService {
	return &UserService{users: users}
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Authenticate returns the user matching username and role whose password
// matches. Legacy password hashes are upgraded on success.
func (s *UserService) Authenticate(ctx context.Context, username, password, role string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, validation("Username and password are required")
	}

	doc, err := s.users.Load(ctx)
	if err != nil {
		return model.User{}, err
	}

	user := doc.FindByUsername(username)
	if user == nil || user.Role != role {
		return model.User{}, ErrUnknownUser
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.WarnContext(ctx, "unreadable password hash", "user_id", user.ID, "error", err)
		return model.User{}, ErrInvalidPassword
	}
	if !valid {
		return model.User{}, ErrInvalidPassword
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, user.PasswordHash, password)
	}

	return *user, nil
}

// rehash replaces an outdated hash. Failure is logged and does not affect
// the login.
func (s *UserService) rehash(ctx context.Context, userID int64, oldHash, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.WarnContext(ctx, "failed to rehash password", "user_id", userID, "error", err)
		return
	}

	err = s.users.Update(ctx, func(doc *model.UserDocument) error {
		i := doc.Find(userID)
		// Skip if the password changed since it was verified.
		if i < 0 || doc.Users[i].PasswordHash != oldHash {
			return errSkip
		}
		doc.Users[i].PasswordHash = hash
		return nil
	})
	switch {
	case errors.Is(err, errSkip):
	case err != nil:
		slog.WarnContext(ctx, "failed to store rehashed password", "user_id", userID, "error", err)
	default:
		slog.InfoContext(ctx, "password hash upgraded", "user_id", userID)
	}
}

// errSkip aborts an Update without writing and without being an error.
var errSkip = errors.New("skip update")

// Register creates a new account. Only admins may register users.
func (s *UserService) Register(ctx context.Context, caller *model.Identity, in RegisterInput) (model.PublicUser, error) {
	if err := requireAdmin(caller, "Only admins can register new users"); err != nil {
		return model.PublicUser{}, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Username == "" || in.Password == "" || in.Email == "" || in.Name == "" || in.Role == "" {
		return model.PublicUser{}, validation("All fields are required")
	}
	if !model.IsValidRole(in.Role) {
		return model.PublicUser{}, validation("Role must be admin or student")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.PublicUser{}, validation("Invalid email address")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hashing password: %w", err)
	}

	var created model.User
	err = s.users.Update(ctx, func(doc *model.UserDocument) error {
		if doc.FindByUsername(in.Username) != nil {
			return validation("Username already exists")
		}
		created = model.User{
			ID:           doc.NextID(),
			Username:     in.Username,
			PasswordHash: hash,
			Role:         in.Role,
			Email:        in.Email,
			Name:         in.Name,
		}
		doc.Users = append(doc.Users, created)
		return nil
	})
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.InfoContext(ctx, "user registered",
		"user_id", created.ID,
		"username", created.Username,
		"role", created.Role,
		"by", caller.Username,
	)
	return created.Public(), nil
}

// List returns every account without password hashes. Admin only.
func (s *UserService) List(ctx context.Context, caller *model.Identity) ([]model.PublicUser, error) {
	if err := requireAdmin(caller, "Only admins can view users"); err != nil {
		return nil, err
	}

	doc, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]model.PublicUser, 0, len(doc.Users))
	for i := range doc.Users {
		users = append(users, doc.Users[i].Public())
	}
	return users, nil
}

// ChangePassword replaces the caller's password after re-verifying the
// current one. Other sessions of the same user stay valid.
func (s *UserService) ChangePassword(ctx context.Context, caller *model.Identity, current, next string) error {
	if err := Require(caller, ""); err != nil {
		return err
	}
	if current == "" || next == "" {
		return validation("Current and new passwords are required")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = s.users.Update(ctx, func(doc *model.UserDocument) error {
		i := doc.Find(caller.UserID)
		if i < 0 {
			return ErrUserNotFound
		}
		valid, err := auth.CheckPassword(current, doc.Users[i].PasswordHash)
		if err != nil || !valid {
			return &Error{Kind: KindUnauthenticated, Message: "Current password is incorrect"}
		}
		doc.Users[i].PasswordHash = hash
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "password changed", "user_id", caller.UserID)
	return nil
}

// Delete removes the account with the given id and returns it. Admins may
// not delete their own account.
func (s *UserService) Delete(ctx context.Context, caller *model.Identity, userID int64) (model.PublicUser, error) {
	if err := requireAdmin(caller, "Only admins can delete users"); err != nil {
		return model.PublicUser{}, err
	}
	if userID == caller.UserID {
		return model.PublicUser{}, ErrSelfDelete
	}

	var deleted model.User
	err := s.users.Update(ctx, func(doc *model.UserDocument) error {
		i := doc.Find(userID)
		if i < 0 {
			return ErrUserNotFound
		}
		deleted = doc.Users[i]
		doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
		return nil
	})
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.InfoContext(ctx, "user deleted",
		"user_id", deleted.ID,
		"username", deleted.Username,
		"by", caller.Username,
	)
	return deleted.Public(), nil
}
