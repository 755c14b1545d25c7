// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package expense_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmaher/ExpenseReport/internal/expense"
	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
)

// fakeRepository is an in-memory [expense.Repository].
type fakeRepository struct {
	nextID  int64
	records []*expense.Report

	// beforeUpdateDetails, when set, runs just before the detail write
	// lands, simulating another request committing in between.
	beforeUpdateDetails func()
}

func (f *fakeRepository) Create(_ context.Context, report *expense.Report) error {
	f.nextID++
	report.ID = f.nextID
	clone := *report
	f.records = append(f.records, &clone)
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id int64) (*expense.Report, error) {
	for _, existing := range f.records {
		if existing.ID == id {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Expense report")
}

func (f *fakeRepository) FindOwned(_ context.Context, ownerID string, id int64) (*expense.Report, error) {
	for _, existing := range f.records {
		if existing.ID == id && existing.OwnerID == ownerID {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Expense report")
}

func (f *fakeRepository) ListByOwner(_ context.Context, ownerID string) ([]expense.Report, error) {
	var all []expense.Report
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].OwnerID == ownerID {
			all = append(all, *f.records[i])
		}
	}
	return all, nil
}

func (f *fakeRepository) ListAll(_ context.Context, ownerID string, month int) ([]expense.Report, error) {
	var all []expense.Report
	for i := len(f.records) - 1; i >= 0; i-- {
		record := f.records[i]
		if ownerID != "" && record.OwnerID != ownerID {
			continue
		}
		if month > 0 && int(record.SubmittedAt.Month()) != month {
			continue
		}
		all = append(all, *record)
	}
	return all, nil
}

func (f *fakeRepository) UpdateDetails(_ context.Context, report *expense.Report) error {
	if f.beforeUpdateDetails != nil {
		f.beforeUpdateDetails()
	}
	for _, existing := range f.records {
		if existing.ID == report.ID && existing.OwnerID == report.OwnerID &&
			existing.Status == expense.StatusPending {
			existing.Title = report.Title
			existing.Amount = report.Amount
			existing.Description = report.Description
			existing.ReceiptURL = report.ReceiptURL
			return nil
		}
	}
	return expense.ErrInvalidExpenseUpdate
}

func (f *fakeRepository) UpdateReview(_ context.Context, report *expense.Report) error {
	for _, existing := range f.records {
		if existing.ID == report.ID {
			existing.Status = report.Status
			existing.AdminComment = report.AdminComment
			return nil
		}
	}
	return apperr.NotFound("Expense report")
}

func (f *fakeRepository) Delete(_ context.Context, ownerID string, id int64) error {
	for i, existing := range f.records {
		if existing.ID == id && existing.OwnerID == ownerID &&
			existing.Status == expense.StatusPending {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return expense.ErrInvalidExpenseUpdate
}

// fakeFileStore records deletions instead of talking to object storage.
type fakeFileStore struct {
	deleted []string
}

func (f *fakeFileStore) Delete(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

// fakeScheduler runs enqueued tasks immediately.
type fakeScheduler struct {
	names []string
}

func (f *fakeScheduler) Enqueue(name string, run func(ctx context.Context) error) {
	f.names = append(f.names, name)
	_ = run(context.Background())
}

func newTestService() (*expense.Service, *fakeRepository, *fakeFileStore, *fakeScheduler) {
	repo := &fakeRepository{}
	files := &fakeFileStore{}
	tasks := &fakeScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return expense.NewService(repo, files, tasks, logger), repo, files, tasks
}

const (
	ownerAlice = "0190b0ae-7f54-7c8a-b6fd-6ad59f6f1c6e"
	ownerBob   = "0190b0ae-7f54-7c8a-b6fd-6ad59f6f1c6f"
)

/*
TestCreate verifies that every submission starts as Pending with a
server-assigned timestamp, regardless of what the client sends.
*/
func TestCreate(t *testing.T) {
	service, _, _, _ := newTestService()

	before := time.Now()
	report, err := service.Create(context.Background(), ownerAlice, expense.CreateInput{
		Title:       "Team lunch",
		Amount:      54.20,
		Description: "Quarterly planning lunch",
	})
	require.NoError(t, err)

	assert.NotZero(t, report.ID)
	assert.Equal(t, ownerAlice, report.OwnerID)
	assert.Equal(t, expense.StatusPending, report.Status)
	assert.False(t, report.SubmittedAt.Before(before))
}

/*
TestListForOwner verifies that owners only ever see their own reports.
*/
func TestListForOwner(t *testing.T) {
	service, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, ownerAlice, expense.CreateInput{Title: "Taxi", Amount: 18})
	require.NoError(t, err)
	_, err = service.Create(ctx, ownerBob, expense.CreateInput{Title: "Hotel", Amount: 240})
	require.NoError(t, err)

	mine, err := service.ListForOwner(ctx, ownerAlice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Taxi", mine[0].Title)
}

/*
TestUpdate_PartialFields verifies that only supplied fields change.
*/
func TestUpdate_PartialFields(t *testing.T) {
	service, _, _, _ := newTestService()
	ctx := context.Background()

	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{
		Title:       "Taxi",
		Amount:      18,
		Description: "Airport transfer",
	})
	require.NoError(t, err)

	newTitle := "Taxi to airport"
	updated, err := service.Update(ctx, ownerAlice, report.ID, expense.UpdateInput{
		Title: &newTitle,
	})
	require.NoError(t, err)

	assert.Equal(t, "Taxi to airport", updated.Title)
	assert.Equal(t, 18.0, updated.Amount)
	assert.Equal(t, "Airport transfer", updated.Description)
}

/*
TestUpdate_AccessRules verifies the owner/pending guards around updates.
*/
func TestUpdate_AccessRules(t *testing.T) {
	service, repo, _, _ := newTestService()
	ctx := context.Background()

	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{Title: "Taxi", Amount: 18})
	require.NoError(t, err)

	newTitle := "Changed"

	t.Run("foreign_report", func(t *testing.T) {
		_, err := service.Update(ctx, ownerBob, report.ID, expense.UpdateInput{Title: &newTitle})
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "BAD_EXPENSE_ACCESS"))
	})

	t.Run("missing_report", func(t *testing.T) {
		_, err := service.Update(ctx, ownerAlice, 9999, expense.UpdateInput{Title: &newTitle})
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "BAD_EXPENSE_ACCESS"))
	})

	t.Run("reviewed_report", func(t *testing.T) {
		repo.records[0].Status = expense.StatusApproved

		_, err := service.Update(ctx, ownerAlice, report.ID, expense.UpdateInput{Title: &newTitle})
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_EXPENSE_UPDATE"))
	})
}

/*
TestUpdate_ReceiptReplacement verifies that a replaced receipt is deleted
from object storage after the record write.
*/
func TestUpdate_ReceiptReplacement(t *testing.T) {
	service, _, files, tasks := newTestService()
	ctx := context.Background()

	oldReceipt := "https://files.example.com/expense-reports/old.pdf"
	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{
		Title:      "Taxi",
		Amount:     18,
		ReceiptURL: oldReceipt,
	})
	require.NoError(t, err)

	newReceipt := "https://files.example.com/expense-reports/new.pdf"
	updated, err := service.Update(ctx, ownerAlice, report.ID, expense.UpdateInput{
		ReceiptURL: newReceipt,
	})
	require.NoError(t, err)

	assert.Equal(t, newReceipt, updated.ReceiptURL)
	assert.Equal(t, []string{oldReceipt}, files.deleted)
	assert.Contains(t, tasks.names, "delete_old_receipt")
}

/*
TestUpdate_ConcurrentReview verifies that a review committed between the
owner's pending check and the detail write wins: the edit is rejected and
the review outcome stays intact.
*/
func TestUpdate_ConcurrentReview(t *testing.T) {
	service, repo, _, _ := newTestService()
	ctx := context.Background()

	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{
		Title:  "Taxi",
		Amount: 18,
	})
	require.NoError(t, err)

	comment := "Within policy"
	repo.beforeUpdateDetails = func() {
		_, err := service.UpdateStatus(ctx, report.ID, expense.StatusApproved, &comment)
		require.NoError(t, err)
	}

	newTitle := "Taxi to airport"
	_, err = service.Update(ctx, ownerAlice, report.ID, expense.UpdateInput{Title: &newTitle})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_EXPENSE_UPDATE"))

	stored, err := repo.FindByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, stored.Status)
	assert.Equal(t, "Within policy", stored.AdminComment)
	assert.Equal(t, "Taxi", stored.Title)
}

/*
TestDelete verifies the pending guard and receipt cleanup on deletion.
*/
func TestDelete(t *testing.T) {
	service, repo, files, _ := newTestService()
	ctx := context.Background()

	receipt := "https://files.example.com/expense-reports/receipt.pdf"
	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{
		Title:      "Taxi",
		Amount:     18,
		ReceiptURL: receipt,
	})
	require.NoError(t, err)

	t.Run("reviewed_report_is_protected", func(t *testing.T) {
		repo.records[0].Status = expense.StatusRejected

		err := service.Delete(ctx, ownerAlice, report.ID)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_EXPENSE_UPDATE"))
	})

	t.Run("pending_report_deletes_with_receipt", func(t *testing.T) {
		repo.records[0].Status = expense.StatusPending

		err := service.Delete(ctx, ownerAlice, report.ID)
		require.NoError(t, err)

		_, err = service.ListForOwner(ctx, ownerAlice)
		require.NoError(t, err)
		assert.Empty(t, repo.records)
		assert.Equal(t, []string{receipt}, files.deleted)
	})
}

/*
TestListAll verifies the admin filters: none, by owner, and by month.
*/
func TestListAll(t *testing.T) {
	service, repo, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, ownerAlice, expense.CreateInput{Title: "March taxi", Amount: 18})
	require.NoError(t, err)
	_, err = service.Create(ctx, ownerAlice, expense.CreateInput{Title: "June hotel", Amount: 240})
	require.NoError(t, err)
	_, err = service.Create(ctx, ownerBob, expense.CreateInput{Title: "June flight", Amount: 410})
	require.NoError(t, err)

	// Pin the months; Create stamps everything with time.Now.
	repo.records[0].SubmittedAt = time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	repo.records[1].SubmittedAt = time.Date(2026, time.June, 9, 12, 0, 0, 0, time.UTC)
	repo.records[2].SubmittedAt = time.Date(2026, time.June, 20, 12, 0, 0, 0, time.UTC)

	t.Run("no_filters", func(t *testing.T) {
		all, err := service.ListAll(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("by_owner", func(t *testing.T) {
		all, err := service.ListAll(ctx, ownerBob, 0)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "June flight", all[0].Title)
	})

	t.Run("by_month", func(t *testing.T) {
		all, err := service.ListAll(ctx, "", 6)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("by_owner_and_month", func(t *testing.T) {
		all, err := service.ListAll(ctx, ownerAlice, 6)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "June hotel", all[0].Title)
	})
}

/*
TestUpdateStatus verifies the admin review transitions and the comment rule.
*/
func TestUpdateStatus(t *testing.T) {
	service, _, _, _ := newTestService()
	ctx := context.Background()

	report, err := service.Create(ctx, ownerAlice, expense.CreateInput{Title: "Taxi", Amount: 18})
	require.NoError(t, err)

	t.Run("invalid_status_leaves_report_untouched", func(t *testing.T) {
		comment := "should never be written"
		_, err := service.UpdateStatus(ctx, report.ID, expense.Status("Archived"), &comment)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INVALID_EXPENSE_STATUS"))

		all, err := service.ListAll(ctx, "", 0)
		require.NoError(t, err)
		assert.Equal(t, expense.StatusPending, all[0].Status)
		assert.Empty(t, all[0].AdminComment)
	})

	t.Run("approve_with_comment", func(t *testing.T) {
		comment := "Looks good"
		updated, err := service.UpdateStatus(ctx, report.ID, expense.StatusApproved, &comment)
		require.NoError(t, err)

		assert.Equal(t, expense.StatusApproved, updated.Status)
		assert.Equal(t, "Looks good", updated.AdminComment)
	})

	t.Run("status_change_without_comment_keeps_previous", func(t *testing.T) {
		updated, err := service.UpdateStatus(ctx, report.ID, expense.StatusRejected, nil)
		require.NoError(t, err)

		assert.Equal(t, expense.StatusRejected, updated.Status)
		assert.Equal(t, "Looks good", updated.AdminComment)
	})

	t.Run("back_to_pending_is_allowed", func(t *testing.T) {
		updated, err := service.UpdateStatus(ctx, report.ID, expense.StatusPending, nil)
		require.NoError(t, err)
		assert.Equal(t, expense.StatusPending, updated.Status)
	})

	t.Run("missing_report", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, 9999, expense.StatusApproved, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "BAD_EXPENSE_ACCESS"))
	})
}
