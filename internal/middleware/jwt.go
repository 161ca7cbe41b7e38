package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"                // sentinel comparisons for token parse failures
    "net/http"              // HTTP status codes for responses
    "strings"               // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's claims into the request context.  The provided secret
// must match the one used when issuing tokens.  Handlers access the
// authenticated identity via c.Get("user_id"), c.Get("user_uuid"),
// c.Get("role") and c.Get("role_id"); no handler reads global auth state.
//
// A 401 is returned for any failure, but the message distinguishes an
// expired token from an invalid or missing one so clients know whether to
// refresh or to re-authenticate.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status": "error", "data": echo.Map{},
                    "msg": "Access token invalid, missing or expired.",
                })
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret.  The callback supplies the
            // signing key and rejects tokens signed with another algorithm.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                if errors.Is(err, jwt.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{
                        "status": "error", "data": echo.Map{},
                        "msg": "The token has expired. Please sign in again.",
                    })
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status": "error", "data": echo.Map{},
                    "msg": "Access token invalid, missing or expired.",
                })
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status": "error", "data": echo.Map{},
                    "msg": "Access token invalid, missing or expired.",
                })
            }

            // JWT numbers decode as float64; normalize before storing so
            // handlers can type-assert without caring about json decoding.
            if sub, ok := claims["sub"].(float64); ok {
                c.Set("user_id", uint64(sub))
            }
            if roleID, ok := claims["role_id"].(float64); ok {
                c.Set("role_id", uint64(roleID))
            }
            if uuid, ok := claims["uuid"].(string); ok {
                c.Set("user_uuid", uuid)
            }
            if role, ok := claims["role"].(string); ok {
                c.Set("role", role)
            }
            return next(c)
        }
    }
}
