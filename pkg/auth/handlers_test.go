package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelopeResponse struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func setupTestServer(t *testing.T) (*echo.Echo, *Service, *testutils.FakeMailer) {
	t.Helper()
	svc, _, mailer := newTestService(t)

	e, err := testutils.NewEcho()
	require.NoError(t, err)
	RegisterRoutesWithGroup(e.Group("/users"), svc, NewMiddleware(svc), config.NewForTest())

	return e, svc, mailer
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var resp envelopeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandlers_RegisterLoginLogout(t *testing.T) {
	t.Parallel()
	e, _, mailer := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/users", `{"fullname":"Ada Lovelace","email":"ada@example.com","username":"adalove","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Account Registration Successful !! Please verify your email.", resp.Message)
	assert.NotContains(t, string(resp.Data), "password")
	assert.NotContains(t, string(resp.Data), "refreshToken")
	assert.NotContains(t, string(resp.Data), "emailVerification")
	require.Len(t, mailer.Sent, 1)

	rec = doJSON(e, http.MethodPost, "/users/login", `{"user":"adalove","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User Authenticated Successfully", decode(t, rec).Message)

	access := findCookie(rec, AccessTokenCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	assert.False(t, access.Secure)
	assert.Equal(t, "/", access.Path)
	refresh := findCookie(rec, RefreshTokenCookie)
	require.NotNil(t, refresh)

	rec = doJSON(e, http.MethodPost, "/users/refresh-token", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := findCookie(rec, RefreshTokenCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	rec = doJSON(e, http.MethodPost, "/users/logout", "", access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logout Successful", decode(t, rec).Message)
	cleared := findCookie(rec, AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestHandlers_RegisterValidation(t *testing.T) {
	t.Parallel()
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/users", `{"fullname":"A","email":"nope","username":"abc","password":"password"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"fullname", "email", "username", "password"}, fields)
}

func TestHandlers_RegisterIgnoresExtraKeys(t *testing.T) {
	t.Parallel()
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/users", `{"fullname":"Grace Hopper","email":"grace@example.com","username":"ghopper","password":"Passw0rd!","confirmPassword":"Passw0rd!","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &user))
	assert.Equal(t, "ghopper", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestHandlers_LogoutRequiresAuth(t *testing.T) {
	t.Parallel()
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodPost, "/users/logout", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized request", decode(t, rec).Message)
}

func TestHandlers_VerifyEmail(t *testing.T) {
	t.Parallel()
	e, svc, mailer := setupTestServer(t)

	_, err := svc.Register(context.Background(), registerOptions("checkme"))
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/users/verify-email/"+mailer.LastToken(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"isEmailVerified":true}`, string(decode(t, rec).Data))

	rec = doJSON(e, http.MethodGet, "/users/verify-email/"+mailer.LastToken(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_UnknownProvider(t *testing.T) {
	t.Parallel()
	e, _, _ := setupTestServer(t)

	rec := doJSON(e, http.MethodGet, "/users/auth/myspace", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Provider doesn't exist", decode(t, rec).Message)
}
