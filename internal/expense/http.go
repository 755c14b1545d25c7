// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package expense

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmaher/ExpenseReport/internal/platform/constants"
	"github.com/slmaher/ExpenseReport/internal/platform/respond"
	"github.com/slmaher/ExpenseReport/internal/platform/validate"

	requestutil "github.com/slmaher/ExpenseReport/internal/platform/request"
)

// ReceiptStore uploads receipt files. Satisfied by objstore.Store.
type ReceiptStore interface {
	Upload(ctx context.Context, content []byte, filename, contentType, folder string) (string, error)
}

// Handler implements the expense-report HTTP endpoints.
//
// Report bodies are multipart/form-data so a receipt can ride along with the
// text fields; the admin review endpoints are plain JSON.
type Handler struct {
	expenseService *Service
	receipts       ReceiptStore
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, receipts ReceiptStore) *Handler {
	return &Handler{
		expenseService: service,
		receipts:       receipts,
	}
}

// Routes returns a [chi.Router] with the owner-facing report endpoints.
// The server mounts it behind authentication.
//
// # Endpoints
//   - POST   /      : Submits a new report (multipart, optional receipt).
//   - GET    /      : Lists the caller's own reports.
//   - PUT    /{id}  : Partially updates a pending report.
//   - DELETE /{id}  : Deletes a pending report and its receipt.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.listMine)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// AdminRoutes returns a [chi.Router] with the review endpoints. The server
// mounts it behind the admin guard.
//
// # Endpoints
//   - GET /            : Lists reports across users with optional filters.
//   - PUT /{id}/status : Moves a report to a new review status.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listAll)
	router.Put("/{id}/status", handler.updateStatus)

	return router
}

// create handles POST /api/v1/reports requests.
//
// # Returns
//   - Writes HTTP 201 Created with the stored report, always Pending.
//   - Writes HTTP 400 Bad Request if validation rules fail.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title := requestutil.FormValue(request, "title")
	amount, err := requestutil.OptionalFormFloat(request, "amount")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	description := requestutil.FormValue(request, "description")

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("title", title).
		MaxLen("title", title, 200).
		Custom("amount", amount == nil, "This field is required")
	if amount != nil {
		validator.Positive("amount", *amount)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Receipt Upload (before the record write) ───────────────────────

	receiptURL, err := handler.uploadReceipt(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	report, err := handler.expenseService.Create(request.Context(), ownerID, CreateInput{
		Title:       title,
		Amount:      *amount,
		Description: description,
		ReceiptURL:  receiptURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 5. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, report)
}

// listMine handles GET /api/v1/reports requests.
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reports, err := handler.expenseService.ListForOwner(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reports)
}

// update handles PUT /api/v1/reports/{id} requests.
//
// Access is verified BEFORE the replacement receipt is uploaded, so a
// request the caller was never allowed to make cannot orphan a file.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reportID, err := requestutil.ParamInt64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{
		Title:       requestutil.OptionalFormValue(request, "title"),
		Description: requestutil.OptionalFormValue(request, "description"),
	}
	input.Amount, err = requestutil.OptionalFormFloat(request, "amount")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required("title", *input.Title).MaxLen("title", *input.Title, 200)
	}
	if input.Amount != nil {
		validator.Positive("amount", *input.Amount)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Access Check, then Receipt Upload ──────────────────────────────

	if _, err := handler.expenseService.CheckOwnerCanModify(request.Context(), ownerID, reportID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.ReceiptURL, err = handler.uploadReceipt(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	report, err := handler.expenseService.Update(request.Context(), ownerID, reportID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 5. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, report)
}

// remove handles DELETE /api/v1/reports/{id} requests.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reportID, err := requestutil.ParamInt64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.expenseService.Delete(request.Context(), ownerID, reportID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// listAll handles GET /api/v1/admin/reports requests.
//
// # Query Parameters
//   - user_id: narrows to a single submitter.
//   - month:   narrows to a calendar month (1-12); 0 or absent means all.
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	ownerID := request.URL.Query().Get("user_id")

	month, err := requestutil.QueryInt(request, "month", 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Range("month", month, 0, 12)
	if ownerID != "" {
		validator.UUID("user_id", ownerID)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reports, err := handler.expenseService.ListAll(request.Context(), ownerID, month)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reports)
}

// updateStatusRequest represents the JSON payload for a review decision.
type updateStatusRequest struct {
	Status       string  `json:"status"`
	AdminComment *string `json:"admin_comment"`
}

// updateStatus handles PUT /api/v1/admin/reports/{id}/status requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated report.
//   - Writes HTTP 400 Bad Request for an unknown status value; the report
//     is left untouched, comment included.
func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	reportID, err := requestutil.ParamInt64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.expenseService.UpdateStatus(request.Context(), reportID, Status(input.Status), input.AdminComment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

// uploadReceipt stores an attached receipt, if any, and returns its URL.
func (handler *Handler) uploadReceipt(request *http.Request) (string, error) {
	receipt, err := requestutil.OptionalFile(request, "file")
	if err != nil {
		return "", err
	}
	if receipt == nil {
		return "", nil
	}

	return handler.receipts.Upload(request.Context(),
		receipt.Content, receipt.Filename, receipt.ContentType, constants.ReceiptFolder)
}
