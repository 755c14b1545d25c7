// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package expense

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, user_id, title, amount, submitted_at, status,
	COALESCE(admin_comment, ''), COALESCE(description, ''), COALESCE(receipt_url, '')`

// scanReport reads one row in reportColumns order.
func scanReport(row pgx.Row) (*Report, error) {
	report := &Report{}
	err := row.Scan(
		&report.ID,
		&report.OwnerID,
		&report.Title,
		&report.Amount,
		&report.SubmittedAt,
		&report.Status,
		&report.AdminComment,
		&report.Description,
		&report.ReceiptURL,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Create persists a new report and fills in its generated id.
func (repository *PostgresRepository) Create(ctx context.Context, report *Report) error {
	const query = `
		INSERT INTO expense_reports (
			user_id, title, amount, submitted_at, status,
			admin_comment, description, receipt_url
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id`

	err := repository.pool.QueryRow(ctx, query,
		report.OwnerID,
		report.Title,
		report.Amount,
		report.SubmittedAt,
		report.Status,
		report.AdminComment,
		report.Description,
		report.ReceiptURL,
	).Scan(&report.ID)

	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			// The owner row is gone; treat it like a missing report.
			return ErrBadExpenseAccess.WithCause(err)
		}
		return fmt.Errorf("postgres_expense_repo_create_failed: %w", dberr.Wrap(err))
	}

	return nil
}

// FindByID retrieves a report regardless of owner.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM expense_reports WHERE id = $1`

	report, err := scanReport(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Expense report")
		}
		return nil, fmt.Errorf("postgres_expense_repo_find_failed: %w", dberr.Wrap(err))
	}

	return report, nil
}

// FindOwned retrieves a report scoped to a single owner. Ownership is part
// of the WHERE clause, so someone else's report scans as no rows at all.
func (repository *PostgresRepository) FindOwned(ctx context.Context, ownerID string, id int64) (*Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM expense_reports WHERE id = $1 AND user_id = $2`

	report, err := scanReport(repository.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Expense report")
		}
		return nil, fmt.Errorf("postgres_expense_repo_find_owned_failed: %w", dberr.Wrap(err))
	}

	return report, nil
}

// ListByOwner returns one user's reports, newest first.
func (repository *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Report, error) {
	const query = `SELECT ` + reportColumns + `
		FROM expense_reports WHERE user_id = $1 ORDER BY submitted_at DESC, id DESC`

	rows, err := repository.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres_expense_repo_list_owner_failed: %w", dberr.Wrap(err))
	}
	defer rows.Close()

	return collectReports(rows)
}

// ListAll returns reports across users with optional owner and month filters.
//
// The WHERE clause is assembled dynamically but only ever from the two fixed
// predicates below, with all values passed as bind parameters.
func (repository *PostgresRepository) ListAll(ctx context.Context, ownerID string, month int) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM expense_reports`

	var (
		predicates []string
		args       []any
	)
	if ownerID != "" {
		args = append(args, ownerID)
		predicates = append(predicates, "user_id = $"+strconv.Itoa(len(args)))
	}
	if month > 0 {
		args = append(args, month)
		predicates = append(predicates, "EXTRACT(MONTH FROM submitted_at) = $"+strconv.Itoa(len(args)))
	}

	for i, predicate := range predicates {
		if i == 0 {
			query += " WHERE " + predicate
		} else {
			query += " AND " + predicate
		}
	}
	query += " ORDER BY submitted_at DESC, id DESC"

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_expense_repo_list_all_failed: %w", dberr.Wrap(err))
	}
	defer rows.Close()

	return collectReports(rows)
}

// UpdateDetails persists the owner-editable fields of a pending report.
//
// The status predicate makes the pending check atomic with the write: if an
// admin review lands between the service's read and this statement, zero
// rows match and the edit is rejected instead of clobbering the review.
func (repository *PostgresRepository) UpdateDetails(ctx context.Context, report *Report) error {
	const query = `
		UPDATE expense_reports
		SET title = $3, amount = $4, description = NULLIF($5, ''),
		    receipt_url = NULLIF($6, '')
		WHERE id = $1 AND user_id = $2 AND status = 'Pending'`

	tag, err := repository.pool.Exec(ctx, query,
		report.ID,
		report.OwnerID,
		report.Title,
		report.Amount,
		report.Description,
		report.ReceiptURL,
	)
	if err != nil {
		return fmt.Errorf("postgres_expense_repo_update_details_failed: %w", dberr.Wrap(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrInvalidExpenseUpdate
	}

	return nil
}

// UpdateReview persists the review outcome of a report.
func (repository *PostgresRepository) UpdateReview(ctx context.Context, report *Report) error {
	const query = `
		UPDATE expense_reports
		SET status = $2, admin_comment = NULLIF($3, '')
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query,
		report.ID,
		report.Status,
		report.AdminComment,
	)
	if err != nil {
		return fmt.Errorf("postgres_expense_repo_update_review_failed: %w", dberr.Wrap(err))
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Expense report")
	}

	return nil
}

// Delete removes one of the owner's pending reports permanently. The status
// predicate rejects the deletion if a review landed since the caller's read.
func (repository *PostgresRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	const query = `
		DELETE FROM expense_reports
		WHERE id = $1 AND user_id = $2 AND status = 'Pending'`

	tag, err := repository.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("postgres_expense_repo_delete_failed: %w", dberr.Wrap(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrInvalidExpenseUpdate
	}

	return nil
}

// collectReports drains a row set in reportColumns order.
func collectReports(rows pgx.Rows) ([]Report, error) {
	var all []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_expense_repo_scan_failed: %w", dberr.Wrap(err))
		}
		all = append(all, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_expense_repo_rows_failed: %w", dberr.Wrap(err))
	}

	return all, nil
}
