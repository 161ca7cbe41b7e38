package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/gymcore/access-api/internal/access"
	"github.com/gymcore/access-api/internal/config"
	"github.com/gymcore/access-api/internal/credential"
	"github.com/gymcore/access-api/internal/database"
	"github.com/gymcore/access-api/internal/handler"
	"github.com/gymcore/access-api/internal/queue"
	"github.com/gymcore/access-api/internal/repository"
	"github.com/gymcore/access-api/internal/router"
	"github.com/gymcore/access-api/internal/view"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOtpRepo(db)
	qrs := repository.NewQrRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	memberships := repository.NewMembershipRepo(db)
	profiles := repository.NewProfileRepo(db)

	// Credential lifecycle services over the token and OTP repos.
	sessions := credential.NewSessions(tokens, cfg.RefreshTTLDays)
	recovery := credential.NewRecovery(otps)

	// Redis backs the rate limiter on the credential routes; nil client
	// means the limiter degrades to a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	// Background consumer delivers queued notification events.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Renderer = view.NewRenderer()
	e.HTTPErrorHandler = handler.ErrorHandler

	authHandler := handler.NewAuthHandler(cfg, users, roles, sessions, recovery)
	qrHandler := handler.NewQrHandler(users, qrs)
	entryHandler := handler.NewEntryHandler(access.NewDecider(qrs, users, subs, memberships), users)
	oauthHandler := handler.NewOAuthHandler(cfg, users, roles, recovery, profiles)
	notifHandler := handler.NewNotificationHandler(cfg, users)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg, rlCfg, rdb)
	router.RegisterQr(e, qrHandler, cfg)
	router.RegisterEntry(e, entryHandler, cfg, rlCfg, rdb)
	router.RegisterOAuth(e, oauthHandler)
	router.RegisterNotifications(e, notifHandler, cfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
