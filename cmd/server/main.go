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

	"github.com/Skotchmaster/saas_boilerplate/internal/config"
	"github.com/Skotchmaster/saas_boilerplate/internal/handlers"
	"github.com/Skotchmaster/saas_boilerplate/internal/hash"
	authmw "github.com/Skotchmaster/saas_boilerplate/internal/middleware/auth"
	"github.com/Skotchmaster/saas_boilerplate/internal/migrations"
	"github.com/Skotchmaster/saas_boilerplate/internal/mykafka"
	"github.com/Skotchmaster/saas_boilerplate/internal/objectstore"
	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	httpserver "github.com/Skotchmaster/saas_boilerplate/internal/transport/http"
	"github.com/Skotchmaster/saas_boilerplate/pkg/db"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

type eventSink interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("app", cfg.AppName)
	ctx := context.Background()

	if err := migrations.Up(ctx, cfg.DatabaseURL, logger); err != nil {
		logger.Error("migrations_failed", "error", err)
		os.Exit(1)
	}

	gdb, err := db.Open(ctx, cfg.DatabaseURL, db.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
	})
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	var events eventSink = mykafka.Noop{}
	if cfg.Kafka.Enabled() {
		events = mykafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("kafka_enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	rp := repo.New(gdb)
	hasher := hash.Bcrypt{}
	tk := tokens.NewService(
		[]byte(cfg.JWT.AccessSecret),
		[]byte(cfg.JWT.RefreshSecret),
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
	)

	accounts := &service.AccountService{Users: rp, Hasher: hasher, Events: events}
	sessions := &service.SessionService{Users: rp, Hasher: hasher, Tokens: tk, Events: events}
	billing := &service.BillingService{Users: rp, PublishableKey: cfg.Stripe.PublishableKey}

	if cfg.AWS.Enabled() {
		store, err := objectstore.NewS3Store(ctx, cfg.AWS)
		if err != nil {
			logger.Error("s3_init_failed", "error", err)
			os.Exit(1)
		}
		accounts.Avatars = store
		logger.Info("avatars_enabled", "bucket", cfg.AWS.Bucket)
	}
	if cfg.Stripe.Enabled() {
		billing.Payments = payments.NewGateway(payments.Options{
			SecretKey:      cfg.Stripe.SecretKey,
			WebhookSecret:  cfg.Stripe.WebhookSecret,
			PaymentMethods: cfg.Stripe.PaymentMethods,
			SuccessURL:     cfg.SuccessURL(),
			CancelURL:      cfg.CancelURL(),
		})
		logger.Info("payments_enabled")
	}

	e := httpserver.New(logger, &httpserver.Deps{
		Gate:     authmw.NewGate(tk),
		Auth:     &handlers.AuthHandler{Accounts: accounts, Sessions: sessions},
		Account:  &handlers.AccountHandler{Accounts: accounts},
		Payments: &handlers.PaymentsHandler{Billing: billing},
		Health:   &handlers.HealthHandler{DB: sqlDB},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
