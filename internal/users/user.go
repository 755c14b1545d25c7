// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

// Package users implements the user directory: identity records, credential
// verification, and the profile/role operations built on them.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the system. They have no
// dependencies on outer layers (HTTP, SQL); repositories and handlers adapt
// around them.
package users

import (
	"net/http"
	"time"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
)

// # Error Kinds

var (
	// ErrUserExists is returned on any username/email/google-id uniqueness
	// collision. The message intentionally does not say which field collided.
	ErrUserExists = apperr.New("USER_EXISTS",
		"User with this email or username already exists", http.StatusConflict)

	// ErrAuthenticationFailed is returned for any failed password login.
	// The message is identical whether the username is unknown, the password
	// is wrong, or the account has no password at all (OAuth-only).
	ErrAuthenticationFailed = apperr.New("AUTHENTICATION_FAILED",
		"Invalid username or password", http.StatusUnauthorized)

	// ErrUserNotFound is returned when an operation targets a missing user id.
	ErrUserNotFound = apperr.New("USER_NOT_FOUND",
		"User not found", http.StatusNotFound)

	// ErrCannotModifySelf blocks an admin from changing their own role.
	ErrCannotModifySelf = apperr.New("CANNOT_MODIFY_SELF",
		"You cannot change your own role", http.StatusBadRequest)
)

// User represents a registered account.
//
// # Rules
//   - Username and Email are globally unique.
//   - GoogleID is globally unique when present.
//   - At creation, at least one credential path must exist: a password hash
//     (password signup) or a Google subject id (OAuth signup). An OAuth user
//     who later sets a password may hold both.
type User struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	AvatarURL    string       `json:"avatar,omitempty"`
	GoogleID     string       `json:"google_id,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}
