// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/ctxutil"
	"github.com/slmaher/ExpenseReport/internal/platform/respond"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
)

// ErrNotAdmin is returned when an authenticated non-admin principal reaches
// an admin-only route.
var ErrNotAdmin = apperr.New("NOT_ADMIN",
	"You do not have the necessary permissions to access this resource",
	http.StatusForbidden)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to easily inject fakes during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.AccessClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AccessClaims] into the request context as the principal.
//
// The verified claims ARE the principal for the rest of the request; no
// database lookup happens here.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, sec.ErrInvalidToken)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccessToken(parts[1])
			if err != nil {
				respond.Error(writer, request, sec.ErrInvalidToken)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks requests unless the authenticated principal holds the
// admin role. It implies [RequireAuth], so routes need only one of the two.
//
// # Flow
//  1. Check if [*sec.AccessClaims] exists in context (implies AuthN).
//  2. Check the role claim against [sec.RoleAdmin].
//  3. If insufficient, abort with [ErrNotAdmin].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Authorization Check ────────────────────────────────────────
		if !sec.UserRole(claims.Role).IsAdmin() {
			respond.Error(writer, request, ErrNotAdmin)
			return
		}

		next.ServeHTTP(writer, request)
	})
}
