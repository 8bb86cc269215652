package loans

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := testutils.NewDB(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func requireCode(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, status, codeErr.HTTPCode)
	if msg != "" {
		assert.Equal(t, msg, codeErr.Message)
	}
}

func createBooks(t *testing.T, db *bun.DB, n int) []string {
	t.Helper()
	ctx := context.Background()
	user, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
	require.NoError(t, err)
	author, err := testutils.CreateAuthor(ctx, db, user, testutils.AuthorOptions{})
	require.NoError(t, err)
	ids := make([]string, n)
	for i := range ids {
		book, err := testutils.CreateBook(ctx, db, author, testutils.BookOptions{})
		require.NoError(t, err)
		ids[i] = book.ID
	}
	return ids
}

func countLoans(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*models.Loan)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestService_CreateLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	bookIDs := createBooks(t, db, 2)
	borrower, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	t.Run("missing books fail the whole loan", func(t *testing.T) {
		_, err := svc.CreateLoan(ctx, borrower.ID, []string{bookIDs[0], "9b2f1f3e-6f4c-4b8e-8a55-4b5f27f1c0aa"})
		requireCode(t, err, http.StatusNotFound, "Book doesn't exist")
		assert.Equal(t, 0, countLoans(t, db))
	})

	t.Run("opens a pending loan for a week", func(t *testing.T) {
		loan, err := svc.CreateLoan(ctx, borrower.ID, []string{bookIDs[0], bookIDs[1], bookIDs[0]})
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusPending, loan.Status)
		assert.Equal(t, now, loan.LoanDate)
		assert.Equal(t, now.Add(7*24*time.Hour), loan.ExpectedReturnDate)
		assert.Nil(t, loan.ReturnDate)
	})

	t.Run("one pending loan at a time", func(t *testing.T) {
		_, err := svc.CreateLoan(ctx, borrower.ID, []string{bookIDs[1]})
		requireCode(t, err, http.StatusBadRequest, "You already have a pending loan")
		assert.Equal(t, 1, countLoans(t, db))
	})
}

func TestService_CreateLoanConcurrently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	bookIDs := createBooks(t, db, 1)
	borrower, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateLoan(ctx, borrower.ID, bookIDs)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, http.StatusBadRequest, "You already have a pending loan")
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, countLoans(t, db))
}

func TestService_ResolveLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	bookIDs := createBooks(t, db, 1)

	newLoan := func(expected time.Time) *models.Loan {
		borrower, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
		require.NoError(t, err)
		loan, err := testutils.CreateLoan(ctx, db, borrower, bookIDs, testutils.LoanOptions{ExpectedReturnDate: expected})
		require.NoError(t, err)
		return loan
	}

	t.Run("before the due date it's returned", func(t *testing.T) {
		loan := newLoan(time.Now().UTC().Add(24 * time.Hour))
		resolved, err := svc.ResolveLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusReturned, resolved.Status)
		require.NotNil(t, resolved.ReturnDate)

		stored, err := svc.RetrieveLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusReturned, stored.Status)
		assert.NotNil(t, stored.ReturnDate)
	})

	t.Run("after the due date it's late", func(t *testing.T) {
		loan := newLoan(time.Now().UTC().Add(-time.Hour))
		resolved, err := svc.ResolveLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusLate, resolved.Status)

		_, err = svc.ResolveLoan(ctx, loan.ID)
		requireCode(t, err, http.StatusBadRequest, "Loan is already cleared")
	})

	t.Run("missing loan", func(t *testing.T) {
		_, err := svc.ResolveLoan(ctx, "9b2f1f3e-6f4c-4b8e-8a55-4b5f27f1c0aa")
		requireCode(t, err, http.StatusNotFound, "Loan doesn't exist")
	})
}

func TestService_ForceReturnLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	bookIDs := createBooks(t, db, 1)
	borrower, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
	require.NoError(t, err)

	late, err := testutils.CreateLoan(ctx, db, borrower, bookIDs, testutils.LoanOptions{Status: models.LoanStatusLate})
	require.NoError(t, err)

	returned, err := svc.ForceReturnLoan(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.WithinDuration(t, *late.ReturnDate, *returned.ReturnDate, time.Millisecond)
	assert.Equal(t, 1, countLoans(t, db))

	pending, err := testutils.CreateLoan(ctx, db, borrower, bookIDs, testutils.LoanOptions{})
	require.NoError(t, err)
	returned, err = svc.ForceReturnLoan(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnDate)
}

func TestService_ListLoans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	bookIDs := createBooks(t, db, 1)

	base := time.Now().UTC().Add(-time.Hour)
	statuses := []string{models.LoanStatusReturned, models.LoanStatusLate, models.LoanStatusPending}
	for i, status := range statuses {
		borrower, err := testutils.CreateUser(ctx, db, testutils.UserOptions{})
		require.NoError(t, err)
		_, err = testutils.CreateLoan(ctx, db, borrower, bookIDs, testutils.LoanOptions{
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListLoans(ctx, ListLoansOptions{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Metadata.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, models.LoanStatusPending, page.Data[0].Status)

	page, err = svc.ListLoans(ctx, ListLoansOptions{Page: 1, Status: models.LoanStatusLate})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Metadata.Total)

	page, err = svc.ListLoans(ctx, ListLoansOptions{Page: 2, Status: "lost"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Metadata.Total)
	assert.Len(t, page.Data, 1)
}
