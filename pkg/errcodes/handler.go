package errcodes

import (
	"fmt"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// Payload is the error envelope written for every failed request.
type Payload struct {
	StatusCode int          `json:"statusCode"`
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Data       *FieldError  `json:"data"`
	Errors     []FieldError `json:"errors"`
	Code       string       `json:"code"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}

	payload := h.generatePayload(err)

	// Internal server errors
	if payload.StatusCode >= http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	if c.Response().Committed {
		return
	}

	if err := c.JSON(payload.StatusCode, payload); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) generatePayload(err error) *Payload {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError
	fields := []FieldError{}

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		msg = fmt.Sprint(he.Message)
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
		if len(e.Fields) > 0 {
			fields = e.Fields
		}
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	payload := &Payload{
		StatusCode: httpCode,
		Success:    false,
		Message:    msg,
		Errors:     fields,
		Code:       code,
	}
	if len(fields) > 0 {
		payload.Data = &fields[0]
	}
	return payload
}
