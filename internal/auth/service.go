// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

// Package auth implements the authentication use cases: password signup and
// login, token refresh, and the Google OAuth login flow.
//
// # Architecture
//
// The service orchestrates the user directory, the token signer, and the
// OAuth collaborators through narrow interfaces. It is technology-agnostic
// and does not know about HTTP or SQL.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
	"github.com/slmaher/ExpenseReport/internal/users"
)

// TokenProvider defines the contract for issuing and verifying security tokens.
type TokenProvider interface {
	// IssueAccessToken creates a signed short-lived JWT for the given user.
	IssueAccessToken(userID, username, role string) (string, error)

	// IssueRefreshToken creates a signed long-lived JWT carrying only the user id.
	IssueRefreshToken(userID string) (string, error)

	// VerifyRefreshToken validates a refresh token and returns its subject id.
	VerifyRefreshToken(tokenString string) (string, error)

	// RefreshTTL reports the refresh-token lifetime.
	RefreshTTL() time.Duration
}

// UserDirectory is the slice of the user service this package depends on.
type UserDirectory interface {
	CreateWithPassword(ctx context.Context, input users.CreateUserInput) (*users.User, error)
	CreateFromGoogle(ctx context.Context, profile users.GoogleProfile) (*users.User, error)
	Authenticate(ctx context.Context, username, password string) (*users.User, error)
	GetByID(ctx context.Context, id string) (*users.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*users.User, error)
	UpdateProfile(ctx context.Context, userID string, input users.UpdateProfileInput) (*users.User, error)
}

// StateRepository stores single-use OAuth state nonces.
type StateRepository interface {
	// Save stores a fresh nonce with the standard TTL.
	Save(ctx context.Context, state string) error

	// Consume validates and invalidates a nonce in one step.
	//
	// Returns [sec.ErrInvalidToken] if the nonce is unknown, expired, or
	// already used.
	Consume(ctx context.Context, state string) error
}

// IdentityProvider abstracts the external OAuth identity provider.
// Satisfied by [GoogleProvider].
type IdentityProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*users.GoogleProfile, error)
}

// Session is the result of any successful authentication: the account plus a
// freshly signed token pair.
type Session struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to login, refresh, or
// the OAuth state handling must be reviewed by the security team.
type Service struct {
	directory   UserDirectory
	tokens      TokenProvider
	states      StateRepository
	identity    IdentityProvider
	frontendURL string
	logger      *slog.Logger
}

// NewService constructs a new authentication [Service] with its dependencies.
//
// frontendURL is where the OAuth callback sends the browser after a
// successful Google login.
func NewService(
	directory UserDirectory,
	tokens TokenProvider,
	states StateRepository,
	identity IdentityProvider,
	frontendURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory:   directory,
		tokens:      tokens,
		states:      states,
		identity:    identity,
		frontendURL: frontendURL,
		logger:      logger.With(slog.String("component", "auth_service")),
	}
}

// Signup registers a new password-based account and immediately signs the
// new user in, so the client never needs a second round trip.
//
// # Business Rules
//   - Usernames and emails must be unique (enforced by storage constraints).
//   - Default role is always 'user'.
func (service *Service) Signup(ctx context.Context, input users.CreateUserInput) (*Session, error) {
	user, err := service.directory.CreateWithPassword(ctx, input)
	if err != nil {
		return nil, err
	}
	return service.issueSession(ctx, user)
}

// Login authenticates a username/password pair and mints a token pair.
//
// # Returns
//   - [users.ErrAuthenticationFailed] for any credential failure, without
//     revealing which part was wrong.
func (service *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	// ── 1. Credential Verification ────────────────────────────────────────

	user, err := service.directory.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	// Deactivated accounts authenticate like unknown ones.
	if !user.IsActive {
		return nil, users.ErrAuthenticationFailed
	}

	// ── 2. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a brand-new token pair.
//
// The new access token embeds the user's CURRENT username and role, so a
// role change takes effect at the next refresh rather than waiting for the
// refresh token itself to expire.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	// ── 1. Token Verification ─────────────────────────────────────────────

	userID, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// ── 2. Principal Re-resolution ────────────────────────────────────────

	user, err := service.directory.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			// The account vanished after the token was minted.
			return nil, sec.ErrInvalidToken
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, sec.ErrInvalidToken
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// GoogleLoginURL starts the OAuth flow: it mints a state nonce, stores it,
// and returns the Google consent page URL to redirect the browser to.
func (service *Service) GoogleLoginURL(ctx context.Context) (string, error) {
	state, err := newStateNonce()
	if err != nil {
		return "", apperr.Internal(err)
	}

	if err := service.states.Save(ctx, state); err != nil {
		return "", apperr.Internal(err)
	}

	return service.identity.AuthCodeURL(state), nil
}

// GoogleCallback completes the OAuth flow for the redirect Google sends back.
//
// # Business Rules
//   - The state nonce must match an unconsumed one we issued.
//   - The Google identity must assert an email address.
//   - First login creates the account; later logins match on the Google
//     subject id.
func (service *Service) GoogleCallback(ctx context.Context, state, code string) (*Session, error) {
	// ── 1. CSRF Check: the state must be one of ours, exactly once ────────

	if state == "" || code == "" {
		return nil, sec.ErrInvalidToken
	}
	if err := service.states.Consume(ctx, state); err != nil {
		return nil, err
	}

	// ── 2. Identity Exchange ──────────────────────────────────────────────

	profile, err := service.identity.FetchProfile(ctx, code)
	if err != nil {
		service.logger.WarnContext(ctx, "google exchange failed", slog.Any("error", err))
		return nil, sec.ErrInvalidToken.WithCause(err)
	}
	if profile.Email == "" {
		// An account without an email cannot exist in this system.
		return nil, sec.ErrInvalidToken
	}

	// ── 3. Find-or-Create by Google subject id ────────────────────────────

	user, err := service.directory.FindByGoogleID(ctx, profile.Subject)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		user, err = service.directory.CreateFromGoogle(ctx, *profile)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, users.ErrAuthenticationFailed
	}

	// ── 4. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// CurrentUser resolves the full account record behind an access token's
// subject id.
func (service *Service) CurrentUser(ctx context.Context, userID string) (*users.User, error) {
	user, err := service.directory.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, sec.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update on behalf of the caller.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input users.UpdateProfileInput) (*users.User, error) {
	return service.directory.UpdateProfile(ctx, userID, input)
}

// RefreshTTL exposes the refresh-token lifetime for cookie settings.
func (service *Service) RefreshTTL() time.Duration {
	return service.tokens.RefreshTTL()
}

// FrontendURL exposes the post-OAuth redirect target for the callback handler.
func (service *Service) FrontendURL() string {
	return service.frontendURL
}

// issueSession signs a fresh token pair for an already-verified account.
func (service *Service) issueSession(ctx context.Context, user *users.User) (*Session, error) {
	accessToken, err := service.tokens.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_access_failed: %w", err)
	}

	refreshToken, err := service.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_refresh_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "session issued", slog.String("user_id", user.ID))

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// newStateNonce returns a fresh URL-safe random nonce for the OAuth state
// parameter.
func newStateNonce() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
