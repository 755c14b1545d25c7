// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/slmaher/ExpenseReport/internal/users"
)

// googleUserInfoURL is Google's OpenID Connect userinfo endpoint.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider performs the server side of the Google OAuth 2.0
// authorization-code flow: building the consent URL, exchanging the
// callback code, and fetching the asserted identity.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
}

// NewGoogleProvider creates a provider from client credentials.
//
// redirectURL must exactly match one of the redirect URIs registered in the
// Google Cloud console, or every exchange will fail.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the Google consent page URL carrying the given state
// nonce for CSRF protection.
func (provider *GoogleProvider) AuthCodeURL(state string) string {
	return provider.oauthConfig.AuthCodeURL(state)
}

// FetchProfile exchanges an authorization code for tokens and resolves the
// asserted identity from the userinfo endpoint.
func (provider *GoogleProvider) FetchProfile(ctx context.Context, code string) (*users.GoogleProfile, error) {
	// ── 1. Code → Token Exchange ──────────────────────────────────────────

	token, err := provider.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google_oauth_exchange_failed: %w", err)
	}

	// ── 2. Identity Resolution ────────────────────────────────────────────

	httpClient := provider.oauthConfig.Client(ctx, token)
	response, err := httpClient.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google_userinfo_request_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google_userinfo_bad_status: %d", response.StatusCode)
	}

	var payload struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("google_userinfo_decode_failed: %w", err)
	}

	return &users.GoogleProfile{
		Subject:    payload.Sub,
		Email:      payload.Email,
		Name:       payload.Name,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
		Picture:    payload.Picture,
	}, nil
}
