// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package users

import (
	"context"
)

// Repository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently.
//
// # Race Semantics
//
// Create and Update do NOT pre-check uniqueness. The storage layer's unique
// constraints are the single authoritative detector: implementations must
// translate a unique-constraint violation into [ErrUserExists] so that two
// concurrent creations of the same username yield exactly one success.
type Repository interface {
	// Create persists a brand-new user account.
	//
	// Returns [ErrUserExists] if username, email, or google id collides.
	Create(ctx context.Context, user *User) error

	// FindByID returns the account with the given id.
	//
	// Returns [apperr.NotFound] if the account does not exist; callers decide
	// whether absence is an error.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is unknown.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByGoogleID returns the account linked to the given Google subject id.
	//
	// Returns [apperr.NotFound] if no account is linked.
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	// List returns every account, newest first.
	List(ctx context.Context) ([]User, error)

	// Update persists the mutable fields (names, username, email, avatar,
	// role, active flag) of an existing account.
	//
	// Returns [ErrUserExists] if the update collides with another account's
	// username or email.
	Update(ctx context.Context, user *User) error
}
