// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmaher/ExpenseReport/internal/platform/respond"
	"github.com/slmaher/ExpenseReport/internal/platform/sec"
	"github.com/slmaher/ExpenseReport/internal/platform/validate"

	requestutil "github.com/slmaher/ExpenseReport/internal/platform/request"
)

// Handler implements the administrative user-management endpoints.
//
// The self-service profile endpoints live with the auth handler; this one
// only carries operations that require the admin role, and the server mounts
// it behind [middleware.RequireAdmin].
type Handler struct {
	userService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// AdminRoutes returns a [chi.Router] with the admin-only user endpoints.
//
// # Endpoints
//   - GET   /            : Lists every account, newest first.
//   - PATCH /{id}/role   : Promotes or demotes an account.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Patch("/{id}/role", handler.updateRole)

	return router
}

// list handles GET /api/v1/admin/users requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	all, err := handler.userService.ListAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, all)
}

// updateRoleRequest represents the JSON payload for a role change.
type updateRoleRequest struct {
	Role string `json:"role"`
}

// updateRole handles PATCH /api/v1/admin/users/{id}/role requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated account.
//   - Writes HTTP 400 Bad Request when an admin targets themselves.
//   - Writes HTTP 404 Not Found when the target does not exist.
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	targetID := requestutil.Param(request, "id")

	var input updateRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("role", input.Role).
		OneOf("role", input.Role, string(sec.RoleAdmin), string(sec.RoleUser))
	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}
	role := sec.UserRole(input.Role)

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.userService.UpdateRole(request.Context(), actorID, targetID, role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, user)
}
