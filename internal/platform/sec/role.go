// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Can review, approve, and reject any expense report and manage users
	RoleAdmin UserRole = "admin"

	// Default role: can submit and manage their own pending reports
	RoleUser UserRole = "user"
)

// IsValid reports whether the role is one of the recognized values.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether the role grants administrative access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}
