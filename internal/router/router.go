package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/gymcore/access-api/internal/config"
	"github.com/gymcore/access-api/internal/handler"    // handlers that implement business logic
	"github.com/gymcore/access-api/internal/middleware" // middleware for JWT authentication, roles and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the credential endpoints.  The unauthenticated
// routes carry guessable secrets (recovery codes, refresh tokens), so
// they sit behind the Redis token bucket; the protected ones run the
// JWT middleware instead.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	// Back-office user bootstrap.
	e.POST("/users", a.CreateUser)

	// Refresh token exchange: validates the presented refresh token and
	// returns a new access/refresh pair without invalidating the old one.
	// Mounted twice; the /oauth path serves the browser-flow clients.
	e.POST("/access/refresh", a.Refresh, limiter)
	e.POST("/oauth/token/refresh", a.Refresh, limiter)

	// Recovery flow: both routes deliberately reveal whether the email is
	// registered, so the limiter is the only brute-force brake.
	e.POST("/auth/forgot-password", a.ForgotPassword, limiter)
	e.POST("/auth/reset-password", a.ResetPassword, limiter)

	// Routes below require a valid access token.
	e.POST("/auth/logout", a.Logout, middleware.JWTAuth(cfg.JWTSecret))
	e.PUT("/auth/change-password", a.ChangePassword, middleware.JWTAuth(cfg.JWTSecret))
}

// RegisterQr wires the QR credential lifecycle.  All three routes are
// authenticated.  Fetch and generate carry a self-service exception, so
// their authorization happens inside the handlers where the target user
// id is known; delete has no such exception and is gated up front.
func RegisterQr(e *echo.Echo, q *handler.QrHandler, cfg config.Config) {
	g := e.Group("/users/:id/qr", middleware.JWTAuth(cfg.JWTSecret))
	g.GET("", q.GetQr)
	g.POST("", q.GenerateQr)
	g.DELETE("", q.DeleteQr, middleware.RequireRole("admin", "receptionist"))
}

// RegisterEntry wires the physical entry decision and the app-tier gate.
// The QR decision endpoint carries no session: the scanned token is the
// credential, and the entrance reader never signs in.
func RegisterEntry(e *echo.Echo, h *handler.EntryHandler, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rlCfg, rdb)
	e.POST("/access/qr", h.AccessByQr, limiter)
	e.GET("/access/app", h.AccessApp, middleware.JWTAuth(cfg.JWTSecret))
}

// RegisterOAuth wires the browser flows.  GET routes render forms; POST
// routes process them and redirect back to the caller-supplied
// redirect_uri with the access token attached.
func RegisterOAuth(e *echo.Echo, o *handler.OAuthHandler) {
	g := e.Group("/oauth")
	g.GET("/login", o.ShowLogin)
	g.GET("/register", o.ShowRegister)
	g.GET("/forgotpassword", o.ShowForgotPassword)
	g.GET("/resetpassword", o.ShowResetPassword)
	g.GET("/registerprofile/:user_id", o.ShowRegisterProfile)

	g.POST("/login", o.Login)
	g.POST("/register", o.Register)
	g.POST("/forgotpassword", o.ForgotPassword)
	g.POST("/resetpassword", o.ResetPassword)
	g.POST("/registerprofile/:user_id", o.RegisterProfile)
}

// RegisterNotifications wires the direct push/email endpoints.  Both are
// authenticated and deliver to the caller's own device token or email.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, cfg config.Config) {
	g := e.Group("/notifications", middleware.JWTAuth(cfg.JWTSecret))
	g.POST("/push", n.SendPush)
	g.POST("/email", n.SendEmail)
}
