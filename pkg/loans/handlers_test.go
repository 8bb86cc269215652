package loans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/pagination"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	e       *echo.Echo
	db      *bun.DB
	authSvc *auth.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	db := setupTestDB(t)
	authSvc := auth.NewService(db, config.NewForTest(), &testutils.FakeMailer{})

	e, err := testutils.NewEcho()
	require.NoError(t, err)
	RegisterRoutesWithGroup(e.Group("/loans"), db, auth.NewMiddleware(authSvc))

	return &testServer{e: e, db: db, authSvc: authSvc}
}

func (s *testServer) createUser(t *testing.T, role string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := testutils.CreateUser(ctx, s.db, testutils.UserOptions{Role: role})
	require.NoError(t, err)
	_, tokens, err := s.authSvc.Login(ctx, user.Username, testutils.DefaultPassword)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testutils.Envelope {
	t.Helper()
	env, err := testutils.DecodeEnvelope(rec)
	require.NoError(t, err)
	return env
}

func TestHandlers_CreateLoan(t *testing.T) {
	t.Parallel()
	s := setupTestServer(t)
	bookIDs := createBooks(t, s.db, 1)
	_, token := s.createUser(t, models.RoleUser)

	rec := testutils.DoJSON(s.e, http.MethodPost, "/loans", `{"bookIds":[]}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodPost, "/loans", `{"bookIds":["not-an-id"]}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodPost, "/loans", `{"bookIds":["9b2f1f3e-6f4c-4b8e-8a55-4b5f27f1c0aa"]}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodPost, "/loans", `{"bookIds":["`+bookIDs[0]+`"]}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Loan Created Successfully", env.Message)
	var loan models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	assert.Equal(t, models.LoanStatusPending, loan.Status)
	assert.Equal(t, bookIDs, loan.BookIDs)

	rec = testutils.DoJSON(s.e, http.MethodPost, "/loans", `{"bookIds":["`+bookIDs[0]+`"]}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You already have a pending loan", decode(t, rec).Message)
}

func TestHandlers_AdminRoutes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := setupTestServer(t)
	bookIDs := createBooks(t, s.db, 1)
	borrower, userToken := s.createUser(t, models.RoleUser)
	_, adminToken := s.createUser(t, models.RoleAdmin)

	loan, err := testutils.CreateLoan(ctx, s.db, borrower, bookIDs, testutils.LoanOptions{
		ExpectedReturnDate: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	rec := testutils.DoJSON(s.e, http.MethodGet, "/loans", "", userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized action", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodGet, "/loans?status=pending", "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Loans Fetched Successfully", env.Message)
	var page pagination.Page[*models.Loan]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Metadata.Total)

	rec = testutils.DoJSON(s.e, http.MethodPut, "/loans/x", "", adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Loan Id", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodPut, "/loans/"+loan.ID, "", userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodPut, "/loans/"+loan.ID, "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decode(t, rec)
	assert.Equal(t, "Loan Updated Successfully", env.Message)
	var resolved models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, models.LoanStatusLate, resolved.Status)

	rec = testutils.DoJSON(s.e, http.MethodPut, "/loans/"+loan.ID, "", adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodDelete, "/loans/"+loan.ID, "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decode(t, rec)
	assert.Equal(t, "Loan Returned Successfully", env.Message)
	var returned models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &returned))
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
}
