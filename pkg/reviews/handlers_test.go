package reviews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

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
	RegisterRoutesWithGroup(e.Group("/books/:id/reviews"), db, auth.NewMiddleware(authSvc))

	return &testServer{e: e, db: db, authSvc: authSvc}
}

func (s *testServer) loginAs(t *testing.T, user *models.User) string {
	t.Helper()
	_, tokens, err := s.authSvc.Login(context.Background(), user.Username, testutils.DefaultPassword)
	require.NoError(t, err)
	return tokens.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testutils.Envelope {
	t.Helper()
	env, err := testutils.DecodeEnvelope(rec)
	require.NoError(t, err)
	return env
}

func TestHandlers_ReviewLifecycle(t *testing.T) {
	t.Parallel()
	s := setupTestServer(t)
	f := newFixture(t, s.db)
	token := s.loginAs(t, f.reader)
	base := "/books/" + f.book.ID + "/reviews"

	rec := testutils.DoJSON(s.e, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodGet, "/books/bad/reviews", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Book Id", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodPost, base, `{"rating":6}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodPost, base, `{"rating":4,"comment":" Lovely "}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Review Added Successfully", env.Message)
	var review models.Review
	require.NoError(t, json.Unmarshal(env.Data, &review))
	assert.Equal(t, "Lovely", review.Comment)

	rec = testutils.DoJSON(s.e, http.MethodPost, base, `{"rating":4}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You have already reviewed this book", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodGet, base+"?rating=9", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decode(t, rec)
	assert.Equal(t, "Reviews Fetched Successfully", env.Message)
	var page pagination.Page[*models.Review]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Metadata.Total)

	rec = testutils.DoJSON(s.e, http.MethodPut, base+"/nope", `{"rating":1}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Review ID or Book ID", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodPut, base+"/"+review.ID, `{"rating":1}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Review Updated Successfully", decode(t, rec).Message)

	rec = testutils.DoJSON(s.e, http.MethodDelete, base+"/"+review.ID, "", s.loginAs(t, f.writer))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutils.DoJSON(s.e, http.MethodDelete, base+"/"+review.ID, "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Review Deleted Successfully", decode(t, rec).Message)
}

func TestHandlers_AuthorCannotReviewOwnBook(t *testing.T) {
	t.Parallel()
	s := setupTestServer(t)
	f := newFixture(t, s.db)

	rec := testutils.DoJSON(s.e, http.MethodPost, "/books/"+f.book.ID+"/reviews", `{"rating":5}`, s.loginAs(t, f.writer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot review your own book", decode(t, rec).Message)
}
