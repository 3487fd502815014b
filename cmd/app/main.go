package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/slotbooking/config"
	"github.com/Domenick1991/slotbooking/internal/bootstrap"
	"github.com/Domenick1991/slotbooking/internal/cache"
	"github.com/Domenick1991/slotbooking/internal/kafka"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/Domenick1991/slotbooking/internal/repository/memory"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type stores struct {
	slots     repository.TimeSlotRepository
	bookings  repository.BookingRepository
	members   repository.MemberDirectory
	calendars repository.CalendarDirectory
}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Booking.Location()
	if err != nil {
		zl.Fatal("booking location", zap.Error(err))
	}

	var st stores
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		zl.Warn("using in-memory storage, data is lost on restart")
		mem := memory.NewStore(cfg.Booking.LockTimeout())
		if cfg.Storage.SeedFile != "" {
			n, err := mem.LoadSeed(cfg.Storage.SeedFile)
			if err != nil {
				zl.Fatal("load seed", zap.Error(err))
			}
			zl.Info("seeded members", zap.Int("count", n), zap.String("file", cfg.Storage.SeedFile))
		}
		st = stores{mem.TimeSlots(), mem.Bookings(), mem.Members(), mem.Calendars()}
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			zl.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			zl.Fatal("ping postgres", zap.Error(err))
		}
		st = stores{
			slots:     repository.NewTimeSlotRepository(pool, cfg.Booking.LockTimeout()),
			bookings:  repository.NewBookingRepository(pool, cfg.Booking.LockTimeout()),
			members:   repository.NewMemberDirectory(pool),
			calendars: repository.NewCalendarDirectory(pool),
		}
	}

	slotOpts := []timeslots.Option{timeslots.WithLogger(zl)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SlotsCacheTTLDuration())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			zl.Warn("redis unavailable, slot lists are read from storage", zap.Error(err))
		}
		slotOpts = append(slotOpts, timeslots.WithCache(redisCache))
	}

	bookingOpts := []booking.BookingServiceOption{
		booking.WithLocation(loc),
		booking.WithLogger(zl),
		booking.WithCalendars(st.calendars),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
		defer producer.Close()
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			zl.Warn("kafka unavailable, booking events may be lost", zap.Error(err))
		}
		cancel()
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
	}

	slotService := timeslots.NewTimeSlotService(st.slots, st.members, st.calendars, slotOpts...)
	bookingService := booking.NewBookingService(st.bookings, st.members, bookingOpts...)

	if err := bootstrap.Run(ctx, cfg, zl, slotService, bookingService); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
