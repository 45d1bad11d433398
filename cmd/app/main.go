package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/bromosky/aventra/api"
	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/bootstrap"
	"github.com/bromosky/aventra/internal/email"
	"github.com/bromosky/aventra/internal/invoice"
	"github.com/bromosky/aventra/internal/kafka"
	"github.com/bromosky/aventra/internal/logger"
	"github.com/bromosky/aventra/internal/notification"
	"github.com/bromosky/aventra/internal/pricing"
	"github.com/bromosky/aventra/internal/repository"
	"github.com/bromosky/aventra/internal/service/booking"
	"github.com/bromosky/aventra/internal/session"
	"github.com/bromosky/aventra/internal/upload"
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
	log.Info("starting web app", "environment", cfg.App.Environment, "addr", cfg.HTTP.Address)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := cfg.Booking.Catalog()
	if err != nil {
		log.Error("invalid package catalog", "error", err)
		os.Exit(1)
	}
	loc := cfg.App.Location()

	proofs, err := upload.NewProofStore(cfg.Upload)
	if err != nil {
		log.Error("prepare upload dir", "error", err)
		os.Exit(1)
	}

	mailer := email.NewSender(cfg.SMTP)
	if !mailer.Enabled() {
		log.Warn("SMTP credentials missing, emails are disabled")
	}
	if cfg.Store.BaseURL == "" {
		log.Warn("GAS_WEBAPP_URL is not set, bookings cannot be stored")
	}

	opts := []booking.BookingServiceOption{
		booking.WithProofStorage(proofs),
		booking.WithLogger(log),
		booking.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn("kafka unreachable, events may be lost", "error", err)
		}
		opts = append(opts, booking.WithEventProducer(producer, cfg.Kafka.BookingEventsTopic))
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(cfg.Store),
		pricing.NewCalculator(catalog, cfg.Booking.DepositFraction),
		invoice.NewGenerator(cfg.Booking.InvoicePrefix, invoice.WithLocation(loc)),
		notification.NewComposer(cfg.App.Brand, cfg.Booking.DepositFraction),
		mailer,
		opts...,
	)

	sessions, closeSessions, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		log.Error("session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	passwords, err := session.NewPasswordChecker(cfg.Admin.Password)
	if err != nil {
		log.Error("admin password", "error", err)
		os.Exit(1)
	}

	router, err := bootstrap.NewRouter(cfg, log, bootstrap.Handlers{
		Booking: api.NewBookingHandler(bookingService, cfg.App.Brand, log),
		Admin:   api.NewAdminHandler(bookingService, sessions, passwords, cfg.Admin, cfg.App.Brand, log),
		Catalog: api.NewCatalogHandler(bookingService),
	})
	if err != nil {
		log.Error("build router", "error", err)
		os.Exit(1)
	}

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

// newSessionStore prefers Redis when configured and falls back to signed tokens.
func newSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, func(), error) {
	if cfg.Redis.Addr != "" {
		store := session.NewRedisStore(cfg.Redis, cfg.Admin.SessionTTL())
		if err := store.Ping(ctx); err != nil {
			log.Warn("redis unreachable, admin logins will fail until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		return store, func() { _ = store.Close() }, nil
	}

	secret := cfg.Admin.SessionSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, nil, err
		}
		secret = hex.EncodeToString(buf)
		log.Warn("SESSION_SECRET not set, admin sessions will not survive a restart")
	}
	store, err := session.NewTokenStore(secret, cfg.Admin.SessionTTL())
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
