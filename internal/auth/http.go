// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

// Package auth also contains the HTTP delivery layer for the authentication
// use cases.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON / form request parsing and strict input validation.
//   - The refresh-token cookie contract shared by all login flows.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmaher/ExpenseReport/internal/platform/constants"
	"github.com/slmaher/ExpenseReport/internal/platform/respond"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
	"github.com/slmaher/ExpenseReport/internal/platform/validate"
	"github.com/slmaher/ExpenseReport/internal/users"

	requestutil "github.com/slmaher/ExpenseReport/internal/platform/request"
)

// AvatarStore uploads profile pictures. Satisfied by objstore.Store.
type AvatarStore interface {
	Upload(ctx context.Context, content []byte, filename, contentType, folder string) (string, error)
}

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
	avatars     AvatarStore
	requireAuth func(http.Handler) http.Handler
	secureCookies bool
}

// NewHandler constructs a new [Handler].
//
// requireAuth is the middleware guarding the authenticated endpoints;
// secureCookies controls the Secure attribute on the refresh cookie and
// should be true everywhere except local development.
func NewHandler(service *Service, avatars AvatarStore, requireAuth func(http.Handler) http.Handler, secureCookies bool) *Handler {
	return &Handler{
		authService: service,
		avatars:     avatars,
		requireAuth: requireAuth,
		secureCookies: secureCookies,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup          : Creates an account and signs it in.
//   - POST /login           : Authenticates and returns a token pair.
//   - POST /refresh         : Exchanges the refresh cookie for new tokens.
//   - GET  /google/login    : Redirects to the Google consent page.
//   - GET  /google/callback : Completes the Google OAuth flow.
//   - GET  /me              : Returns the calling account. (auth)
//   - PUT  /profile         : Partially updates the calling account. (auth)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Get("/google/login", handler.googleLogin)
	router.Get("/google/callback", handler.googleCallback)

	router.Group(func(protected chi.Router) {
		protected.Use(handler.requireAuth)
		protected.Get("/me", handler.me)
		protected.Put("/profile", handler.updateProfile)
	})

	return router
}

// signupRequest represents the JSON payload expected for account creation.
type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// signup handles POST /api/v1/auth/signup requests.
//
// # Returns
//   - Writes HTTP 201 Created with the user and an access token; the refresh
//     token travels only in the http-only cookie.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if email/username is taken.
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("username", input.Username).
		MinLen("username", input.Username, 3).
		MaxLen("username", input.Username, 64).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8)
	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Signup(request.Context(), users.CreateUserInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	handler.setRefreshCookie(writer, session.RefreshToken)
	respond.Created(writer, loginResponse(session))
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK with the user and an access token, plus the refresh
//     cookie.
//   - Writes HTTP 401 Unauthorized for bad credentials without leaking which
//     part was wrong.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Username == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("username/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	handler.setRefreshCookie(writer, session.RefreshToken)
	respond.OK(writer, loginResponse(session))
}

// refresh handles POST /api/v1/auth/refresh requests.
//
// The refresh token is read exclusively from the http-only cookie; a new
// cookie is set on success so the refresh window slides forward.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, sec.ErrInvalidToken)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken)
	respond.OK(writer, loginResponse(session))
}

// googleLogin handles GET /api/v1/auth/google/login requests.
//
// It redirects the browser to the Google consent page with a single-use
// state nonce.
func (handler *Handler) googleLogin(writer http.ResponseWriter, request *http.Request) {
	consentURL, err := handler.authService.GoogleLoginURL(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, consentURL, http.StatusTemporaryRedirect)
}

// googleCallback handles GET /api/v1/auth/google/callback requests.
//
// On success the browser is redirected back to the frontend with the refresh
// cookie set; the frontend then calls /refresh to obtain an access token.
func (handler *Handler) googleCallback(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	session, err := handler.authService.GoogleCallback(request.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken)
	http.Redirect(writer, request, handler.authService.FrontendURL(), http.StatusTemporaryRedirect)
}

// me handles GET /api/v1/auth/me requests.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateProfile handles PUT /api/v1/auth/profile requests.
//
// The body is multipart/form-data so a new avatar can ride along with the
// text fields. Omitted fields are left untouched.
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := users.UpdateProfileInput{
		FirstName: requestutil.OptionalFormValue(request, "first_name"),
		LastName:  requestutil.OptionalFormValue(request, "last_name"),
		Username:  requestutil.OptionalFormValue(request, "username"),
		Email:     requestutil.OptionalFormValue(request, "email"),
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	if input.Username != nil {
		validator.Required("username", *input.Username).MinLen("username", *input.Username, 3)
	}
	if input.Email != nil {
		validator.Email("email", *input.Email)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Avatar Upload (before the record write, like receipts) ─────────

	avatar, err := requestutil.OptionalFile(request, "avatar")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if avatar != nil {
		url, err := handler.avatars.Upload(request.Context(),
			avatar.Content, avatar.Filename, avatar.ContentType, constants.AvatarFolder)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input.AvatarURL = url
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	user, err := handler.authService.UpdateProfile(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 5. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, user)
}

// loginResponse shapes the body shared by signup, login, and refresh.
func loginResponse(session *Session) map[string]any {
	return map[string]any{
		"user":         session.User,
		"access_token": session.AccessToken,
		"token_type":   "bearer",
	}
}

// setRefreshCookie installs the http-only refresh-token cookie.
//
// SameSite=Lax lets the cookie survive the top-level redirect back from
// Google while still blocking cross-site POSTs.
func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, refreshToken string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(handler.authService.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
