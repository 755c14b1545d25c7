// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package expense

import (
	"context"
)

// Repository defines the data access contract for expense reports.
//
// # Review Process
//
// This interface is placed in a separate file from expense.go so entity
// changes and storage-contract changes can be reviewed independently.
//
// Absence is always reported as [apperr.NotFound]; the service layer decides
// whether to surface it as [ErrBadExpenseAccess].
type Repository interface {
	// Create persists a new report and fills in its generated id.
	Create(ctx context.Context, report *Report) error

	// FindByID returns the report with the given id regardless of owner.
	FindByID(ctx context.Context, id int64) (*Report, error)

	// FindOwned returns the report only if it belongs to ownerID. A report
	// owned by someone else is indistinguishable from a missing one.
	FindOwned(ctx context.Context, ownerID string, id int64) (*Report, error)

	// ListByOwner returns all reports submitted by one user, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Report, error)

	// ListAll returns reports across all users, newest first.
	//
	// ownerID narrows to a single submitter when non-empty; month narrows to
	// a calendar month (1-12) of the submission date when non-zero.
	ListAll(ctx context.Context, ownerID string, month int) ([]Report, error)

	// UpdateDetails persists the owner-editable fields (title, amount,
	// description, receipt) of a report that is still pending. The status
	// and admin comment are never written, so a concurrent review cannot
	// be overwritten by an owner edit.
	//
	// Returns [ErrInvalidExpenseUpdate] if the report is no longer pending
	// by the time the write lands.
	UpdateDetails(ctx context.Context, report *Report) error

	// UpdateReview persists the review fields (status, admin comment) of a
	// report, leaving the owner-editable fields untouched.
	UpdateReview(ctx context.Context, report *Report) error

	// Delete removes one of ownerID's reports permanently, but only while it
	// is still pending, under the same atomic guard as UpdateDetails.
	Delete(ctx context.Context, ownerID string, id int64) error
}
