package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoan_Resolve(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	t.Run("before the expected return date", func(t *testing.T) {
		l := &Loan{Status: LoanStatusPending, ExpectedReturnDate: due}
		now := due.Add(-time.Hour)
		l.Resolve(now)
		assert.Equal(t, LoanStatusReturned, l.Status)
		require.NotNil(t, l.ReturnDate)
		assert.Equal(t, now, *l.ReturnDate)
	})

	t.Run("after the expected return date", func(t *testing.T) {
		l := &Loan{Status: LoanStatusPending, ExpectedReturnDate: due}
		l.Resolve(due.Add(time.Minute))
		assert.Equal(t, LoanStatusLate, l.Status)
	})
}

func TestLoan_ForceReturn(t *testing.T) {
	t.Parallel()

	returned := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	l := &Loan{Status: LoanStatusLate, ReturnDate: &returned}
	l.ForceReturn(returned.Add(24 * time.Hour))
	assert.Equal(t, LoanStatusReturned, l.Status)
	assert.Equal(t, returned, *l.ReturnDate)

	l = &Loan{Status: LoanStatusPending}
	now := time.Now().UTC()
	l.ForceReturn(now)
	assert.Equal(t, LoanStatusReturned, l.Status)
	assert.Equal(t, now, *l.ReturnDate)
}

func TestUser_HasRole(t *testing.T) {
	t.Parallel()

	u := &User{Role: RoleAuthor}
	assert.True(t, u.HasRole(RoleAdmin, RoleAuthor))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.IsAdmin())
	assert.True(t, IsValidRole(RoleUser))
	assert.False(t, IsValidRole("superuser"))
	assert.True(t, IsValidLoanStatus(LoanStatusLate))
	assert.False(t, IsValidLoanStatus("lost"))
}
