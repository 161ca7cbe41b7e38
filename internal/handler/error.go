package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error Echo surfaces into the shared
// envelope: routing misses (404/405), echo.HTTPError values raised by
// middleware, and anything a handler lets escape.  Unexpected errors are
// logged server-side and reach the caller as a generic 500 message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Unexpected server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
		msg = "Unexpected server error"
	}
	_ = respondErr(c, code, nil, msg)
}
