package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/email"
	"github.com/bromosky/aventra/internal/kafka"
	"github.com/bromosky/aventra/internal/logger"
	"github.com/bromosky/aventra/internal/notification"
	"github.com/bromosky/aventra/internal/service/notifier"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App, os.Stdout)
	slog.SetDefault(log)

	if !cfg.Kafka.Enabled() {
		log.Error("KAFKA_BROKERS is not set, nothing to consume")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := email.NewSender(cfg.SMTP)
	if !mailer.Enabled() || cfg.Admin.Email == "" {
		log.Warn("SMTP credentials or ADMIN_EMAIL missing, alerts will be skipped")
	}
	handler := notifier.NewAdminNotifier(
		mailer,
		notification.NewComposer(cfg.App.Brand, cfg.Booking.DepositFraction),
		cfg.Admin.Email,
		log,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic,
		kafka.WithConsumerLogger(log))
	defer consumer.Close()

	log.Info("worker started", "topic", cfg.Kafka.BookingEventsTopic, "group", cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}
