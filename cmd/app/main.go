package main

import (
	"context"
	"log"
	"time"

	"github.com/clementdevtech/general-hardware/external/abstractapi"
	"github.com/clementdevtech/general-hardware/external/resend"

	"github.com/clementdevtech/general-hardware/internal/config"
	"github.com/clementdevtech/general-hardware/internal/db"
	"github.com/clementdevtech/general-hardware/internal/limiter"
	"github.com/clementdevtech/general-hardware/internal/logger"
	"github.com/clementdevtech/general-hardware/internal/middleware"
	"github.com/clementdevtech/general-hardware/internal/repository"
	"github.com/clementdevtech/general-hardware/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

const sessionTTL = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(!cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	// ======================
	// INFRA
	// ======================
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatalw("database connect failed", "error", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		zlog.Fatalw("schema migration failed", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// ======================
	// EXTERNALS
	// ======================
	var emailValidator services.EmailValidator
	if cfg.UseEmailReputation {
		emailValidator, err = abstractapi.NewAbstractReputationValidator(cfg.AbstractAPIKey)
		if err != nil {
			zlog.Fatalw("email reputation validator init failed", "error", err)
		}
	} else {
		emailValidator = services.NewLocalValidator()
	}

	mailer, err := resend.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	if err != nil {
		zlog.Fatalw("mailer init failed", "error", err)
	}

	// ======================
	// REPOSITORIES
	// ======================
	userRepo := repository.NewUserRepository(pool)
	pendingRepo := repository.NewPendingUserRepository(pool)
	verifyRepo := repository.NewEmailVerificationRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	// ======================
	// SERVICES
	// ======================
	sendLimiter := limiter.New(rdb, time.Minute, 2)
	authSvc := services.NewAuthService(
		userRepo, pendingRepo, verifyRepo, resetRepo,
		emailValidator, mailer, sendLimiter,
		cfg.ClientURL, zlog,
	)

	jwtm := middleware.NewJWT(cfg.JWTSecret, sessionTTL)

	// Expired pending registrations read as absent; the sweep just
	// reclaims the rows.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := pendingRepo.DeleteExpired(ctx); err != nil {
				zlog.Warnw("pending user sweep failed", "error", err)
			} else if n > 0 {
				zlog.Infow("reclaimed expired pending users", "count", n)
			}
		}
	}()

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("/api")

	registerAuthRoutes(api, authSvc, jwtm, cfg.Production())

	// ======================
	// SERVER
	// ======================
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
