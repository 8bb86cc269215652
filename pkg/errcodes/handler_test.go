package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, Payload) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	NewHandler().Handle(err, c)

	var payload Payload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return rr, payload
}

func TestHandle_CustomError(t *testing.T) {
	t.Parallel()

	rr, payload := handle(t, errors.WithStack(NotFound("Book")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, http.StatusNotFound, payload.StatusCode)
	assert.False(t, payload.Success)
	assert.Equal(t, "Book doesn't exist", payload.Message)
	assert.Nil(t, payload.Data)
	assert.Empty(t, payload.Errors)
	assert.NotNil(t, payload.Errors)
}

func TestHandle_ValidationFailed(t *testing.T) {
	t.Parallel()

	fields := []FieldError{
		{Field: "title", Message: `"title" is required`},
		{Field: "pages", Message: `"pages" must be greater than or equal to 1`},
	}
	rr, payload := handle(t, ValidationFailed(fields))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation Failed", payload.Message)
	require.NotNil(t, payload.Data)
	assert.Equal(t, "title", payload.Data.Field)
	assert.Equal(t, fields, payload.Errors)
}

func TestHandle_EchoError(t *testing.T) {
	t.Parallel()

	rr, payload := handle(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method Not Allowed", payload.Message)
	assert.Equal(t, "method_not_allowed", payload.Code)
}

func TestHandle_UnknownErrorHidesDetails(t *testing.T) {
	t.Parallel()

	rr, payload := handle(t, errors.New("sqlite: disk I/O error"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal Server Error", payload.Message)
	assert.Equal(t, "internal_server_error", payload.Code)
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := errors.Wrap(NotFound("Loan"), "retrieving loan")
	assert.True(t, errors.Is(err, NotFound("Loan")))
	assert.False(t, errors.Is(err, NotFound("Book")))
}
