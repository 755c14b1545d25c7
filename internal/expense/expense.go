// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

// Package expense implements the expense-report lifecycle: submission,
// owner-side editing of pending reports, and the admin review flow.
package expense

import (
	"net/http"
	"time"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
)

// # Error Kinds

var (
	// ErrBadExpenseAccess is returned when a report does not exist OR belongs
	// to someone else. One message for both cases, so probing ids reveals
	// nothing about other users' reports.
	ErrBadExpenseAccess = apperr.New("BAD_EXPENSE_ACCESS",
		"Expense report doesn't exist or you are not authorized to access it",
		http.StatusBadRequest)

	// ErrInvalidExpenseUpdate is returned when the owner tries to modify or
	// delete a report that has already been reviewed.
	ErrInvalidExpenseUpdate = apperr.New("INVALID_EXPENSE_UPDATE",
		"Only pending expense reports can be modified", http.StatusBadRequest)

	// ErrInvalidExpenseStatus is returned for a status value outside the
	// allowed set.
	ErrInvalidExpenseStatus = apperr.New("INVALID_EXPENSE_STATUS",
		"Invalid expense status", http.StatusBadRequest)
)

// Status is the review state of an expense report.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsValid reports whether the status is one of the allowed values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Report represents a single submitted expense report.
//
// # Rules
//   - Every report belongs to exactly one owner and starts as Pending.
//   - SubmittedAt is assigned by the server at creation and never changes.
//   - Owners may modify or delete a report only while it is Pending; admins
//     may move it between any two statuses at any time.
type Report struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"user_id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	SubmittedAt time.Time `json:"date"`
	Status      Status    `json:"status"`

	AdminComment string `json:"admin_comment,omitempty"`
	Description  string `json:"description,omitempty"`
	ReceiptURL   string `json:"file,omitempty"`
}

// IsPending reports whether the owner may still modify this report.
func (r *Report) IsPending() bool {
	return r.Status == StatusPending
}
