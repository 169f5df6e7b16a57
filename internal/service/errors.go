// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the calendar's domain operations on top of the
// record store: user management, events, reports and the chat transcript.
package service

import (
	"errors"
	"fmt"

	"github.com/olegiv/college-calendar/internal/store"
)

// Kind classifies a service error.
type Kind int

// Error kinds, from the caller's point of view.
const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error is a classified error with a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two service errors of the same kind and message, so the
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Sentinel errors shared by several operations.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "Not authenticated"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "Access denied"}
	ErrSelfDelete      = &Error{Kind: KindValidation, Message: "Cannot delete your own account"}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrEventNotFound   = &Error{Kind: KindNotFound, Message: "Event not found"}
	ErrReportNotFound  = &Error{Kind: KindNotFound, Message: "Report not found"}
)

// Login failures. Both are reported as unauthenticated; neither reveals
// which of username, role or password was wrong beyond the message.
var (
	ErrUnknownUser     = &Error{Kind: KindUnauthenticated, Message: "User not found or incorrect role"}
	ErrInvalidPassword = &Error{Kind: KindUnauthenticated, Message: "Invalid password"}
)

func validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// KindOf returns the kind of err. Storage failures from the record store are
// KindStorage; any other unclassified error is KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, store.ErrStorage) {
		return KindStorage
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "Internal server error"
}
