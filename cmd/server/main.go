package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/database"
	"github.com/iliyamo/contact-book/internal/handler"
	"github.com/iliyamo/contact-book/internal/middleware"
	"github.com/iliyamo/contact-book/internal/obs"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/repository/memory"
	"github.com/iliyamo/contact-book/internal/repository/mysql"
	"github.com/iliyamo/contact-book/internal/router"
	"github.com/iliyamo/contact-book/internal/service"
	"github.com/iliyamo/contact-book/internal/storage"
)

const serviceName = "contact-book"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.IsProd() {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return l.With(zap.String("service", serviceName))
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.Options{
			Service: serviceName, Version: "1.0.0", Env: cfg.Env, Endpoint: cfg.OTelEndpoint,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	var (
		users    repository.UserRepository
		contacts repository.ContactRepository
		pinger   handler.Pinger
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		db, err := database.Open(ctx, database.Params{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		users, contacts, pinger = mysql.NewUserRepo(db), mysql.NewContactRepo(db), db
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.New()
		users, contacts = store.Users(), store.Contacts()
	}

	var events queue.Emitter = queue.Nop{}
	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logger.Warn("event publishing disabled", zap.Error(err))
		} else {
			defer pub.Close()
			events = pub
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.RateLimit.Enabled {
		logger.Warn("redis unavailable; auth rate limiting disabled")
	}

	photos := storage.NewDisk(cfg.UploadDir, "/uploads")
	authSvc := service.NewAuthService(users, service.AuthConfig{
		Secret: cfg.JWTSecret, TokenTTL: cfg.AccessTTL, BcryptCost: cfg.BcryptCost,
	}, events, logger)
	contactSvc := service.NewContactService(contacts, photos, cfg.MaxPhotoBytes, events, logger)
	adminSvc := service.NewAdminService(users, contacts, photos, events, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, router.Deps{
		Service:     serviceName,
		Logger:      logger,
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		UploadDir:   cfg.UploadDir,
		DB:          pinger,
		AuthLimiter: middleware.NewTokenBucket(cfg.RateLimit, rdb, logger),
		Auth:        handler.NewAuthHandler(authSvc),
		Contacts:    handler.NewContactHandler(contactSvc),
		Admin:       handler.NewAdminHandler(adminSvc),
	})

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
