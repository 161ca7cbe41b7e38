package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnvelopeServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	return e
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestErrorHandlerUnknownRoute(t *testing.T) {
	e := newEnvelopeServer()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Not Found", env.Msg)
	assert.NotNil(t, env.Data)
}

func TestErrorHandlerMethodNotAllowed(t *testing.T) {
	e := newEnvelopeServer()
	e.GET("/only-get", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/only-get", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Method Not Allowed", env.Msg)
}

func TestErrorHandlerUnexpectedErrorIsGeneric(t *testing.T) {
	e := newEnvelopeServer()
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("sql: connection refused")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Unexpected server error", env.Msg)
	// Internal failure detail must never leak to the caller.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
