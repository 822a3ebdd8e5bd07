// Command auditlog consumes domain events from RabbitMQ and appends them to
// an audit file.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/queue"
)

func main() {
	out := flag.String("out", "logs/audit.log", "audit log file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if cfg.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:      cfg.RabbitMQURL,
		Exchange: cfg.EventsExchange,
		Log:      queue.NewAuditLog(*out),
		Logger:   logger,
	}
	logger.Info("audit consumer started", zap.String("queue", queue.AuditQueue), zap.String("out", *out))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("audit consumer", zap.Error(err))
	}
}
