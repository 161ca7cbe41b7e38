package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes
    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  The roles
// accepted correspond to the values stored in the JWT's "role" claim.
// If the user's role is not in the allowed set, the request is aborted
// with a 403 Forbidden response.  It assumes JWTAuth has already
// extracted the role into the context under the key "role".
//
// Endpoints with a self-service exception (QR fetch/generate) do not use
// this middleware; they call access.Allow inside the handler where the
// target user id is known.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant‑time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "status": "error", "data": echo.Map{},
                    "msg": "You do not have permission to perform this action.",
                })
            }
            return next(c)
        }
    }
}
