// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
)

// FileStore removes previously uploaded receipt files. Satisfied by
// objstore.Store.
type FileStore interface {
	Delete(ctx context.Context, fileURL string) error
}

// CleanupScheduler runs best-effort work after the database write has
// succeeded. Satisfied by cleanup.Runner.
type CleanupScheduler interface {
	Enqueue(name string, run func(ctx context.Context) error)
}

// Service contains the business logic for the expense-report lifecycle.
type Service struct {
	repo   Repository
	files  FileStore
	tasks  CleanupScheduler
	logger *slog.Logger
}

// NewService creates a new expense service.
func NewService(repo Repository, files FileStore, tasks CleanupScheduler, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		files:  files,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "expense_service")),
	}
}

// CreateInput carries the owner-supplied fields of a new report.
type CreateInput struct {
	Title       string
	Amount      float64
	Description string
	ReceiptURL  string
}

// Create submits a new expense report for the given owner.
//
// # Business Rules
//   - Status is ALWAYS Pending at creation; the client cannot choose it.
//   - The submission timestamp is server-assigned.
func (service *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*Report, error) {
	report := &Report{
		OwnerID:     ownerID,
		Title:       input.Title,
		Amount:      input.Amount,
		SubmittedAt: time.Now(),
		Status:      StatusPending,
		Description: input.Description,
		ReceiptURL:  input.ReceiptURL,
	}

	if err := service.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "expense report submitted",
		slog.Int64("report_id", report.ID),
		slog.String("owner_id", ownerID))

	return report, nil
}

// ListForOwner returns the caller's own reports, newest first.
func (service *Service) ListForOwner(ctx context.Context, ownerID string) ([]Report, error) {
	return service.repo.ListByOwner(ctx, ownerID)
}

// CheckOwnerCanModify verifies that the report exists, belongs to ownerID,
// and is still pending. Handlers call it BEFORE uploading a replacement
// receipt so a rejected request never leaves an orphaned file behind.
//
// # Returns
//   - [ErrBadExpenseAccess] when the report is missing or foreign.
//   - [ErrInvalidExpenseUpdate] when the report was already reviewed.
func (service *Service) CheckOwnerCanModify(ctx context.Context, ownerID string, id int64) (*Report, error) {
	report, err := service.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrBadExpenseAccess
		}
		return nil, err
	}

	if !report.IsPending() {
		return nil, ErrInvalidExpenseUpdate
	}

	return report, nil
}

// UpdateInput carries a partial owner-side update. Nil pointers mean "leave
// unchanged"; ReceiptURL is the already-uploaded replacement, if any.
type UpdateInput struct {
	Title       *string
	Amount      *float64
	Description *string
	ReceiptURL  string
}

// Update applies a partial update to one of the owner's pending reports.
// When a new receipt replaces an old one, the old file is deleted after the
// database write succeeds, best effort.
func (service *Service) Update(ctx context.Context, ownerID string, id int64, input UpdateInput) (*Report, error) {
	// ── 1. Re-check access: the upload window leaves room for races ───────

	report, err := service.CheckOwnerCanModify(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	// ── 2. Apply only the supplied fields ─────────────────────────────────

	if input.Title != nil {
		report.Title = *input.Title
	}
	if input.Amount != nil {
		report.Amount = *input.Amount
	}
	if input.Description != nil {
		report.Description = *input.Description
	}

	previousReceipt := ""
	if input.ReceiptURL != "" && input.ReceiptURL != report.ReceiptURL {
		previousReceipt = report.ReceiptURL
		report.ReceiptURL = input.ReceiptURL
	}

	// ── 3. Persist, then drop the superseded receipt ──────────────────────

	if err := service.repo.UpdateDetails(ctx, report); err != nil {
		return nil, err
	}

	if previousReceipt != "" {
		oldURL := previousReceipt
		service.tasks.Enqueue("delete_old_receipt", func(taskCtx context.Context) error {
			return service.files.Delete(taskCtx, oldURL)
		})
	}

	return report, nil
}

// Delete removes one of the owner's pending reports along with its receipt.
func (service *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	report, err := service.CheckOwnerCanModify(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, ownerID, report.ID); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "expense report deleted",
		slog.Int64("report_id", report.ID),
		slog.String("owner_id", ownerID))

	if report.ReceiptURL != "" {
		receiptURL := report.ReceiptURL
		service.tasks.Enqueue("delete_receipt", func(taskCtx context.Context) error {
			return service.files.Delete(taskCtx, receiptURL)
		})
	}

	return nil
}

// ListAll returns reports across all users for the admin dashboard.
//
// ownerID narrows to one submitter when non-empty. month narrows to a
// calendar month of the submission date; zero means all months.
func (service *Service) ListAll(ctx context.Context, ownerID string, month int) ([]Report, error) {
	return service.repo.ListAll(ctx, ownerID, month)
}

// UpdateStatus moves a report to a new review status.
//
// # Business Rules
//   - Any status can move to any other status, including back to Pending.
//   - The admin comment is overwritten only when one is supplied; omitting
//     it keeps whatever comment is already on the report.
func (service *Service) UpdateStatus(ctx context.Context, id int64, status Status, adminComment *string) (*Report, error) {
	// ── 1. Validate the target status before touching storage ────────────

	if !status.IsValid() {
		return nil, ErrInvalidExpenseStatus
	}

	// ── 2. Load, mutate, persist ──────────────────────────────────────────

	report, err := service.repo.FindByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrBadExpenseAccess
		}
		return nil, err
	}

	report.Status = status
	if adminComment != nil {
		report.AdminComment = *adminComment
	}

	if err := service.repo.UpdateReview(ctx, report); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "expense report reviewed",
		slog.Int64("report_id", report.ID),
		slog.String("status", string(status)))

	return report, nil
}
