package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/accounts"
	"github.com/librarium/librarium/internal/auth"
	"github.com/librarium/librarium/internal/config"
	"github.com/librarium/librarium/internal/database"
	"github.com/librarium/librarium/internal/database/authors"
	"github.com/librarium/librarium/internal/database/books"
	"github.com/librarium/librarium/internal/database/halls"
	"github.com/librarium/librarium/internal/database/lookup"
	http_controllers "github.com/librarium/librarium/internal/http"
	"github.com/librarium/librarium/internal/loans"
)

func Serve(router *gin.Engine, cfg *config.Config, log *logrus.Logger) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.WithFields(logrus.Fields{"host": cfg.HTTP.Host, "port": cfg.HTTP.Port}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.WithField("timeout", timeout).Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server shutdown failed")
	}

	log.Info("server exited")
}

func Run(cfg *config.Config, version string) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	log.WithField("version", version).Info("starting librarium")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("error closing database")
		}
	}()

	// Seed the initial administrator so the at-least-one-admin
	// invariant holds from first boot.
	if cfg.Auth.AdminPassword != "" {
		hashed, err := auth.HashPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
		if err != nil {
			log.WithError(err).Fatal("invalid admin password")
		}
		if err := db.EnsureAdmin(cfg.Auth.AdminLogin, hashed); err != nil {
			log.WithError(err).Fatal("failed to seed admin account")
		}
	} else {
		log.Warn("AUTH_ADMIN_PASSWORD is not set; skipping admin seeding")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    db,
		Books:       books.NewRepository(db.DB),
		Authors:     authors.NewRepository(db.DB),
		Halls:       halls.NewRepository(db.DB),
		Lookup:      lookup.NewRepository(db.DB),
		Accounts:    accounts.NewService(db.DB, auth.Hasher{Cost: cfg.Auth.BcryptCost}, log),
		Loans:       loans.NewService(db.DB, loans.UTCClock{}, log),
		AuthService: auth.NewService(db.DB, cfg.Auth),
		AuthConfig:  cfg.Auth,
		Logger:      log,
		Version:     version,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, log)
}
