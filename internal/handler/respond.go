package handler

// respond.go defines the JSON envelope shared by every endpoint. All
// responses, success or error, have the shape
// {"status": "...", "data": {...}, "msg": "..."} so API clients and the
// entrance hardware parse one format.

import "github.com/labstack/echo/v4"

type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Msg    string      `json:"msg"`
}

// respondOK writes a success envelope with the given HTTP status.
func respondOK(c echo.Context, code int, data interface{}, msg string) error {
	if data == nil {
		data = echo.Map{}
	}
	return c.JSON(code, envelope{Status: "success", Data: data, Msg: msg})
}

// respondErr writes an error envelope with the given HTTP status.
func respondErr(c echo.Context, code int, data interface{}, msg string) error {
	if data == nil {
		data = echo.Map{}
	}
	return c.JSON(code, envelope{Status: "error", Data: data, Msg: msg})
}
