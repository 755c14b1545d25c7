// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces.
package sec

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
)

// ErrInvalidToken is returned for any token that fails signature, expiry, or
// claim-shape validation. The message is deliberately uniform so callers
// cannot distinguish a forged token from an expired one.
var ErrInvalidToken = apperr.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)

// AccessClaims represents the payload embedded inside a JWT access token.
//
// # Why custom claims?
//
// By embedding the username and role next to the subject id, middleware can
// reconstruct the calling principal WITHOUT querying the database on every
// request. The claims are the principal.
type AccessClaims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
	Role     string `json:"role"`
}

// refreshClaims is the minimal payload of a refresh token: subject id only.
// Refresh tokens never carry role or username; those are re-read from the
// user record when a new access token is minted.
type refreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed JWTs.
//
// Both token kinds are signed with the same process-wide secret and algorithm;
// neither is persisted server-side. Validity is purely signature + expiry, so
// revocation before expiry is impossible by design.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService from process configuration.
//
// algorithm must be one of HS256, HS384, HS512.
func NewTokenService(secret, algorithm, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, apperr.New("BAD_SIGNING_ALGORITHM",
			"sec: unsupported signing algorithm "+algorithm+" (want HS256/HS384/HS512)",
			http.StatusInternalServerError)
	}
	if secret == "" {
		return nil, apperr.New("MISSING_SIGNING_SECRET",
			"sec: signing secret must not be empty",
			http.StatusInternalServerError)
	}

	return &TokenService{
		secret:     []byte(secret),
		method:     method,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken creates a signed short-lived access token carrying the
// subject id, username, and role.
func (service *TokenService) IssueAccessToken(userID, username, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTTL)),
		},
		Username: username,
		Role:     role,
	}

	signed, err := jwt.NewWithClaims(service.method, claims).SignedString(service.secret)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// IssueRefreshToken creates a signed long-lived refresh token carrying only
// the subject id.
func (service *TokenService) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(service.method, claims).SignedString(service.secret)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// RefreshTTL reports the configured refresh-token lifetime. Handlers use it
// to set the cookie Max-Age consistently with the embedded expiry.
func (service *TokenService) RefreshTTL() time.Duration {
	return service.refreshTTL
}

// VerifyAccessToken checks the signature and validity of an access token and
// returns its claims.
//
// Returns [ErrInvalidToken] if the signature is invalid, the token is expired,
// or any of the required claims (subject, username, role) is absent.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.parse(tokenString, claims); err != nil {
		return nil, err
	}

	// jwt-go validates signature and expiry; claim presence is ours to check.
	if claims.Subject == "" || claims.Username == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyRefreshToken checks the signature and validity of a refresh token and
// returns the subject id it was issued for.
//
// Returns [ErrInvalidToken] if the signature is invalid, the token is expired,
// or the subject claim is absent.
func (service *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	claims := &refreshClaims{}
	if err := service.parse(tokenString, claims); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// parse runs signature and registered-claim validation shared by both token kinds.
func (service *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm-substitution attacks: only the configured HMAC
		// family is acceptable.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return service.secret, nil
	})
	if err != nil {
		return ErrInvalidToken.WithCause(err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
