package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The validation in CreateUser runs before any repository call, so a
// zero-value handler is enough to exercise the reject paths.

func postJSON(t *testing.T, h func(echo.Context) error, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestCreateUserRejectsWeakPassword(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.CreateUser, `{"email":"staff@example.com","password":"abcdefgh","role_id":5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "security requirements")
}

func TestCreateUserRequiresFields(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.CreateUser, `{"email":"staff@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}
