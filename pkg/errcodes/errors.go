package errcodes

import (
	"net/http"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	// Fields is only populated for validation failures.
	Fields []FieldError
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Fields = err.Fields
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// BadRequest returns a 400 error with the given message.
func BadRequest(msg string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  msg,
		Code:     "bad_request",
	}
}

// InvalidID returns the 400 error used when a path parameter isn't a
// well-formed identifier for the given resource.
func InvalidID(resource string) error {
	return BadRequest("Invalid " + resource + " Id")
}

// Unauthorized returns a 401 error with the given message.
func Unauthorized(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnauthorized,
		Message:  msg,
		Code:     "unauthorized",
	}
}

// InvalidToken is returned when a bearer token fails signature or expiry
// verification.
func InvalidToken() error {
	return &Error{
		HTTPCode: http.StatusUnauthorized,
		Message:  "Invalid or expired token",
		Code:     "invalid_token",
	}
}

// Forbidden returns a 403 error for a role or ownership failure.
func Forbidden() error {
	return &Error{
		HTTPCode: http.StatusForbidden,
		Message:  "Unauthorized action",
		Code:     "forbidden",
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " doesn't exist",
		Code:     "not_found",
	}
}

// NotFoundMessage returns a 404 error with a custom message.
func NotFoundMessage(msg string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  msg,
		Code:     "not_found",
	}
}

// Conflict returns a 409 error, used for uniqueness violations.
func Conflict(msg string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  msg,
		Code:     "conflict",
	}
}

// Internal returns a 500 error whose message is safe to show to clients.
func Internal(msg string) error {
	return &Error{
		HTTPCode: http.StatusInternalServerError,
		Message:  msg,
		Code:     "internal_server_error",
	}
}

func PayloadTooLarge() error {
	return &Error{
		HTTPCode: http.StatusRequestEntityTooLarge,
		Message:  "File too large",
		Code:     "payload_too_large",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

// ValidationFailed returns the 400 error carrying every invalid field.
func ValidationFailed(fields []FieldError) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Validation Failed",
		Code:     "validation_failed",
		Fields:   fields,
	}
}

func UnknownParameter(param string) error {
	return ValidationFailed([]FieldError{{Field: param, Message: "Unknown parameter"}})
}

func ValidationTypeError(field, msg string) error {
	return ValidationFailed([]FieldError{{Field: field, Message: msg}})
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}
