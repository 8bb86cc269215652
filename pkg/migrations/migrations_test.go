package migrations

import (
	"context"
	"testing"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBringUpToDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.False(t, group.IsZero())

	for _, table := range []string{"users", "authors", "books", "loans", "reviews"} {
		var count int
		err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &count)
		require.NoError(t, err, table)
	}

	// Running again is a no-op.
	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.True(t, group.IsZero())
}

func TestPendingLoanIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()
	_, err = BringUpToDate(ctx, db)
	require.NoError(t, err)

	insert := `INSERT INTO loans (id, borrower_id, book_ids, loan_date, expected_return_date, status) VALUES (?, 'u1', '[]', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, ?)`
	_, err = db.ExecContext(ctx, insert, "l1", "returned")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "l2", "pending")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "l3", "pending")
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err, "loans.borrower_id"))
}

func TestRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()
	_, err = BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := NewMigrator(db)
	group, err := migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.False(t, group.IsZero())

	_, err = db.ExecContext(ctx, "SELECT 1 FROM users")
	assert.Error(t, err)
}
