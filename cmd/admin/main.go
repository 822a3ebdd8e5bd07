// Command admin creates the first administrator account, or promotes an
// existing user, against the configured database.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/database"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository/mysql"
	"github.com/iliyamo/contact-book/internal/service"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "password for a newly created admin (min 6 chars)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if cfg.DBDriver != config.DriverMySQL {
		logger.Fatal("admin seeding needs DB_DRIVER=mysql", zap.String("db_driver", cfg.DBDriver))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, database.Params{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc := service.NewAuthService(mysql.NewUserRepo(db), service.AuthConfig{
		Secret: cfg.JWTSecret, TokenTTL: cfg.AccessTTL, BcryptCost: cfg.BcryptCost,
	}, queue.Nop{}, logger)

	created, err := svc.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		logger.Fatal("ensure admin", zap.Error(err))
	}
	if created {
		logger.Info("admin created", zap.String("email", *email))
	} else {
		logger.Info("admin ready", zap.String("email", *email))
	}
}
