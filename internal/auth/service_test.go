// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmaher/ExpenseReport/internal/auth"
	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
	"github.com/slmaher/ExpenseReport/internal/users"
)

// fakeDirectory is an in-memory [auth.UserDirectory].
type fakeDirectory struct {
	nextID  int
	records map[string]*users.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{records: map[string]*users.User{}}
}

func (f *fakeDirectory) add(user users.User) *users.User {
	f.nextID++
	if user.ID == "" {
		user.ID = "user-" + string(rune('0'+f.nextID))
	}
	f.records[user.ID] = &user
	return &user
}

func (f *fakeDirectory) CreateWithPassword(_ context.Context, input users.CreateUserInput) (*users.User, error) {
	for _, existing := range f.records {
		if existing.Username == input.Username || existing.Email == input.Email {
			return nil, users.ErrUserExists
		}
	}
	return f.add(users.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     sec.RoleUser,
		IsActive: true,
	}), nil
}

func (f *fakeDirectory) CreateFromGoogle(_ context.Context, profile users.GoogleProfile) (*users.User, error) {
	username := profile.Name
	if username == "" {
		username = profile.Email
		if at := strings.Index(profile.Email, "@"); at > 0 {
			username = profile.Email[:at]
		}
	}
	return f.add(users.User{
		Username: username,
		Email:    profile.Email,
		GoogleID: profile.Subject,
		Role:     sec.RoleUser,
		IsActive: true,
	}), nil
}

func (f *fakeDirectory) Authenticate(_ context.Context, username, password string) (*users.User, error) {
	for _, existing := range f.records {
		if existing.Username == username && password == "correct-password" {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, users.ErrAuthenticationFailed
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*users.User, error) {
	existing, ok := f.records[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *existing
	return &clone, nil
}

func (f *fakeDirectory) FindByGoogleID(_ context.Context, googleID string) (*users.User, error) {
	for _, existing := range f.records {
		if existing.GoogleID != "" && existing.GoogleID == googleID {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeDirectory) UpdateProfile(_ context.Context, userID string, input users.UpdateProfileInput) (*users.User, error) {
	existing, ok := f.records[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	if input.Username != nil {
		existing.Username = *input.Username
	}
	clone := *existing
	return &clone, nil
}

// fakeStateRepository is an in-memory single-use nonce store.
type fakeStateRepository struct {
	saved map[string]bool
}

func (f *fakeStateRepository) Save(_ context.Context, state string) error {
	f.saved[state] = true
	return nil
}

func (f *fakeStateRepository) Consume(_ context.Context, state string) error {
	if !f.saved[state] {
		return sec.ErrInvalidToken
	}
	delete(f.saved, state)
	return nil
}

// fakeIdentityProvider returns a canned profile for a known code.
type fakeIdentityProvider struct {
	profile users.GoogleProfile
}

func (f *fakeIdentityProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f *fakeIdentityProvider) FetchProfile(_ context.Context, code string) (*users.GoogleProfile, error) {
	if code != "good-code" {
		return nil, apperr.Unauthorized("bad code")
	}
	profile := f.profile
	return &profile, nil
}

func newTestService(t *testing.T) (*auth.Service, *fakeDirectory, *fakeStateRepository, *fakeIdentityProvider) {
	t.Helper()

	tokens, err := sec.NewTokenService("0123456789abcdef0123456789abcdef", "HS256",
		"test-issuer", 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	directory := newFakeDirectory()
	states := &fakeStateRepository{saved: map[string]bool{}}
	identity := &fakeIdentityProvider{profile: users.GoogleProfile{
		Subject: "google-sub-1",
		Email:   "sam@example.com",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(directory, tokens, states, identity,
		"https://app.example.com/auth/callback", logger)
	return service, directory, states, identity
}

/*
TestSignup verifies that signup immediately yields a working token pair.
*/
func TestSignup(t *testing.T) {
	service, _, _, _ := newTestService(t)

	session, err := service.Signup(context.Background(), users.CreateUserInput{
		Username: "s.maher",
		Email:    "sam@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "s.maher", session.User.Username)

	refreshed, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refreshed.User.ID)
}

/*
TestLogin covers credential success, failure, and the inactive-account rule.
*/
func TestLogin(t *testing.T) {
	service, directory, _, _ := newTestService(t)
	ctx := context.Background()

	directory.add(users.User{ID: "u-active", Username: "active", Email: "a@example.com", Role: sec.RoleUser, IsActive: true})
	directory.add(users.User{ID: "u-inactive", Username: "inactive", Email: "i@example.com", Role: sec.RoleUser, IsActive: false})

	t.Run("success", func(t *testing.T) {
		session, err := service.Login(ctx, "active", "correct-password")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
	})

	t.Run("bad_credentials", func(t *testing.T) {
		_, err := service.Login(ctx, "active", "wrong-password")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "AUTHENTICATION_FAILED"))
	})

	t.Run("inactive_account", func(t *testing.T) {
		_, err := service.Login(ctx, "inactive", "correct-password")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "AUTHENTICATION_FAILED"))
	})
}

/*
TestRefresh verifies that refresh re-reads the CURRENT account state.
*/
func TestRefresh(t *testing.T) {
	service, directory, _, _ := newTestService(t)
	ctx := context.Background()

	user := directory.add(users.User{Username: "s.maher", Email: "sam@example.com", Role: sec.RoleUser, IsActive: true})
	session, err := service.Login(ctx, "s.maher", "correct-password")
	require.NoError(t, err)

	t.Run("garbage_token", func(t *testing.T) {
		_, err := service.Refresh(ctx, "not-a-token")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})

	t.Run("role_change_takes_effect", func(t *testing.T) {
		directory.records[user.ID].Role = sec.RoleAdmin

		refreshed, err := service.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, refreshed.User.Role)
	})

	t.Run("deactivated_account", func(t *testing.T) {
		directory.records[user.ID].IsActive = false

		_, err := service.Refresh(ctx, session.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})

	t.Run("vanished_account", func(t *testing.T) {
		delete(directory.records, user.ID)

		_, err := service.Refresh(ctx, session.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})
}

/*
TestGoogleLoginURL verifies that the consent URL carries a stored nonce.
*/
func TestGoogleLoginURL(t *testing.T) {
	service, _, states, _ := newTestService(t)

	consentURL, err := service.GoogleLoginURL(context.Background())
	require.NoError(t, err)

	require.Len(t, states.saved, 1)
	for state := range states.saved {
		assert.Contains(t, consentURL, state)
	}
}

/*
TestGoogleCallback covers the state nonce contract and find-or-create.
*/
func TestGoogleCallback(t *testing.T) {
	service, directory, states, identity := newTestService(t)
	ctx := context.Background()

	newState := func() string {
		_, err := service.GoogleLoginURL(ctx)
		require.NoError(t, err)
		for state := range states.saved {
			return state
		}
		t.Fatal("no state saved")
		return ""
	}

	t.Run("missing_parameters", func(t *testing.T) {
		_, err := service.GoogleCallback(ctx, "", "")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})

	t.Run("unknown_state", func(t *testing.T) {
		_, err := service.GoogleCallback(ctx, "forged-state", "good-code")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})

	t.Run("first_login_creates_account", func(t *testing.T) {
		session, err := service.GoogleCallback(ctx, newState(), "good-code")
		require.NoError(t, err)

		assert.Equal(t, "sam", session.User.Username)
		assert.Equal(t, "google-sub-1", session.User.GoogleID)
		assert.NotEmpty(t, session.RefreshToken)
	})

	t.Run("second_login_reuses_account", func(t *testing.T) {
		before := len(directory.records)

		session, err := service.GoogleCallback(ctx, newState(), "good-code")
		require.NoError(t, err)

		assert.Len(t, directory.records, before)
		assert.Equal(t, "google-sub-1", session.User.GoogleID)
	})

	t.Run("state_is_single_use", func(t *testing.T) {
		state := newState()
		_, err := service.GoogleCallback(ctx, state, "good-code")
		require.NoError(t, err)

		_, err = service.GoogleCallback(ctx, state, "good-code")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})

	t.Run("identity_without_email_is_rejected", func(t *testing.T) {
		identity.profile = users.GoogleProfile{Subject: "google-sub-2"}

		_, err := service.GoogleCallback(ctx, newState(), "good-code")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
	})
}
