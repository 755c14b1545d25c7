// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
)

// FileStore removes previously uploaded files. Satisfied by objstore.Store.
type FileStore interface {
	Delete(ctx context.Context, fileURL string) error
}

// CleanupScheduler runs best-effort work after the database write has
// succeeded. Satisfied by cleanup.Runner.
type CleanupScheduler interface {
	Enqueue(name string, run func(ctx context.Context) error)
}

// Service contains the business logic for user accounts.
type Service struct {
	repo   Repository
	files  FileStore
	tasks  CleanupScheduler
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, files FileStore, tasks CleanupScheduler, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		files:  files,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "users_service")),
	}
}

// CreateUserInput carries the fields accepted at signup.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// CreateWithPassword registers a new password-based account.
// Returns [ErrUserExists] if the username or email is already taken.
func (service *Service) CreateWithPassword(ctx context.Context, input CreateUserInput) (*User, error) {
	// ── 1. Hash the password ──
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// ── 2. Build and persist; the unique constraints arbitrate duplicates ──
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		ID:           id.String(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
		IsActive:     true,
	}

	if err := service.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// GoogleProfile is the identity asserted by Google after an OAuth exchange.
type GoogleProfile struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// CreateFromGoogle registers a new account from a Google identity. The
// account has no password; its username is taken from the profile's display
// name, falling back to the email local-part when Google sends no name.
func (service *Service) CreateFromGoogle(ctx context.Context, profile GoogleProfile) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	username := profile.Name
	if username == "" {
		username = profile.Email
		if at := strings.Index(profile.Email, "@"); at > 0 {
			username = profile.Email[:at]
		}
	}

	user := &User{
		ID:        id.String(),
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
		Username:  username,
		Email:     profile.Email,
		AvatarURL: profile.Picture,
		GoogleID:  profile.Subject,
		Role:      sec.RoleUser,
		IsActive:  true,
	}

	if err := service.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user created from google",
		slog.String("user_id", user.ID))

	return user, nil
}

// Authenticate verifies a username/password pair.
//
// Every failure mode (unknown username, wrong password, OAuth-only account
// with no password hash) collapses into [ErrAuthenticationFailed] so the
// response never reveals which part was wrong.
func (service *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := service.repo.FindByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrAuthenticationFailed
	}

	return user, nil
}

// GetByID retrieves a single user account.
func (service *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return service.repo.FindByID(ctx, id)
}

// FindByGoogleID retrieves the account linked to a Google subject id.
func (service *Service) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return service.repo.FindByGoogleID(ctx, googleID)
}

// ListAll returns every account, newest first. Admin only; the transport
// layer enforces that.
func (service *Service) ListAll(ctx context.Context) ([]User, error) {
	return service.repo.List(ctx)
}

// UpdateRole changes the role of the target account.
// Returns [ErrCannotModifySelf] when an admin targets their own account and
// [ErrUserNotFound] when the target does not exist.
func (service *Service) UpdateRole(ctx context.Context, actorID, targetID string, role sec.UserRole) (*User, error) {
	// ── 1. Guard the footgun: an admin demoting themselves ──
	if actorID == targetID {
		return nil, ErrCannotModifySelf
	}

	if !role.IsValid() {
		return nil, apperr.ValidationError("Invalid role", apperr.FieldError{
			Field:   "role",
			Message: "Must be admin or user",
		})
	}

	// ── 2. Load, mutate, persist ──
	user, err := service.repo.FindByID(ctx, targetID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Role = role
	if err := service.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user role changed",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
		slog.String("changed_by", actorID))

	return user, nil
}

// UpdateProfileInput carries a partial profile update. Nil pointers mean
// "leave unchanged"; AvatarURL is the already-uploaded replacement, if any.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Username  *string
	Email     *string
	AvatarURL string
}

// UpdateProfile applies a partial update to the caller's own profile.
// When a new avatar replaces an old one, the old file is deleted after the
// database write succeeds, best effort.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ── 1. Apply only the supplied fields ──
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}

	previousAvatar := ""
	if input.AvatarURL != "" && input.AvatarURL != user.AvatarURL {
		previousAvatar = user.AvatarURL
		user.AvatarURL = input.AvatarURL
	}

	// ── 2. Persist; username/email collisions surface as USER_EXISTS ──
	if err := service.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	// ── 3. Drop the superseded avatar only after the write committed ──
	if previousAvatar != "" {
		oldURL := previousAvatar
		service.tasks.Enqueue("delete_old_avatar", func(taskCtx context.Context) error {
			return service.files.Delete(taskCtx, oldURL)
		})
	}

	return user, nil
}
