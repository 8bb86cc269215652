package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/errcodes"
)

// NewEcho returns an echo instance wired with the binder and error handler
// the server uses.
func NewEcho() (*echo.Echo, error) {
	e := echo.New()
	b, err := binder.New()
	if err != nil {
		return nil, err
	}
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	return e, nil
}
