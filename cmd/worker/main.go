package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/slotbooking/config"
	"github.com/Domenick1991/slotbooking/internal/calendarsync"
	"github.com/Domenick1991/slotbooking/internal/kafka"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// The worker mirrors booking events into hosts' Google calendars. It needs
// the postgres store since it writes the event id back to the booking.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Storage.Driver != config.StorageDriverPostgres {
		zl.Fatal("worker requires postgres storage", zap.String("driver", cfg.Storage.Driver))
	}
	if cfg.Google.CredentialsFile == "" {
		zl.Fatal("google.credentials_file is not set")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		zl.Fatal("kafka.brokers is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Booking.Location()
	if err != nil {
		zl.Fatal("booking location", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	credentials, err := os.ReadFile(cfg.Google.CredentialsFile)
	if err != nil {
		zl.Fatal("read google credentials", zap.Error(err))
	}
	googleCalendar, err := calendarsync.NewGoogleCalendar(ctx, credentials, cfg.Google.TimeZone)
	if err != nil {
		zl.Fatal("google calendar client", zap.Error(err))
	}

	mirror := calendarsync.NewMirror(
		googleCalendar,
		repository.NewCalendarDirectory(pool),
		repository.NewBookingRepository(pool, cfg.Booking.LockTimeout()),
		loc,
		zl,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, zl)
	defer consumer.Close()

	zl.Info("calendar sync worker started",
		zap.String("topic", cfg.Kafka.BookingEventsTopic),
		zap.String("group_id", cfg.Kafka.GroupID))
	if err := consumer.Consume(ctx, consumer.BookingEvents(mirror.Handle)); err != nil {
		zl.Error("consumer stopped", zap.Error(err))
		return
	}
	zl.Info("calendar sync worker stopped")
}
