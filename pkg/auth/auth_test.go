package auth

import (
	"context"
	"testing"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/testutils"
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

func newTestService(t *testing.T) (*Service, *bun.DB, *testutils.FakeMailer) {
	t.Helper()
	db := setupTestDB(t)
	mailer := &testutils.FakeMailer{}
	return NewService(db, config.NewForTest(), mailer), db, mailer
}
