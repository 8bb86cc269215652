package envelope

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the body written for every successful request.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// JSON writes data wrapped in the success envelope.
func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
	})
}

// OK is shorthand for a 200 envelope.
func OK(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusOK, message, data)
}

// Created is shorthand for a 201 envelope.
func Created(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusCreated, message, data)
}
