package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymcore/access-api/internal/utils"
)

const mwSecret = "mw-secret"

func doRequest(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	called := false
	h := JWTAuth(mwSecret)(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, called
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, called := doRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "invalid, missing or expired")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	access, err := utils.NewAccessToken(mwSecret, 7, "u", "client", 5, -1)
	require.NoError(t, err)

	rec, called := doRequest(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "token has expired")
}

func TestJWTAuthWrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("other-secret", 7, "u", "client", 5, 5)
	require.NoError(t, err)

	rec, called := doRequest(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	access, err := utils.NewAccessToken(mwSecret, 7, "uuid-7", "receptionist", 2, 5)
	require.NoError(t, err)

	e := echo.New()
	var gotID, gotRoleID any
	var gotRole, gotUUID any
	h := JWTAuth(mwSecret)(func(c echo.Context) error {
		gotID = c.Get("user_id")
		gotRole = c.Get("role")
		gotRoleID = c.Get("role_id")
		gotUUID = c.Get("user_uuid")
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access.Token)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), gotID)
	assert.Equal(t, "receptionist", gotRole)
	assert.Equal(t, uint64(2), gotRoleID)
	assert.Equal(t, "uuid-7", gotUUID)
}
