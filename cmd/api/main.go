package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/booking"
	"github.com/ariefcatur/go-seat-reservations/internal/config"
	"github.com/ariefcatur/go-seat-reservations/internal/httpx"
	kafkax "github.com/ariefcatur/go-seat-reservations/internal/kafka"
	"github.com/ariefcatur/go-seat-reservations/internal/logx"
	"github.com/ariefcatur/go-seat-reservations/internal/payhere"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
	"github.com/ariefcatur/go-seat-reservations/internal/redisx"
	"github.com/ariefcatur/go-seat-reservations/internal/seats"
	"github.com/ariefcatur/go-seat-reservations/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfg.Validate(); err != nil {
		fatal(log, "config_invalid", err)
	}
	if cfg.MerchantID == "" || cfg.MerchantSecret == "" {
		log.Warn("payhere_credentials_missing", "hint", "set PAYHERE_MERCHANT_ID and PAYHERE_MERCHANT_SECRET")
	}

	// Store
	var st booking.Store
	switch cfg.Store {
	case "memory":
		st = demoStore(log)
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal(log, "db_connect_failed", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			fatal(log, "db_migrate_failed", err)
		}
		st = &store.Postgres{DB: db}
	}

	opts := []booking.Option{booking.WithLogger(log)}

	// Redis cache (optional)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
	} else {
		opts = append(opts, booking.WithCache(&redisx.Cache{RDB: rdb, Log: log}))
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start()
	opts = append(opts, booking.WithEvents(&kafkax.Emitter{Producer: prod, Service: cfg.ServiceName}))

	svc := booking.New(st, payhere.New(cfg.PayHere()), opts...)
	router := httpx.NewRouter(
		&httpx.PaymentsHandler{Svc: svc, Log: log},
		&httpx.ReserveHandler{Svc: svc, Log: log},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listening", "addr", cfg.HTTPAddr, "store", cfg.Store, "sandbox", !cfg.Production)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "http_listen_failed", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting_down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush pending events
	prod.WaitClosed()
}

// demoStore seeds one trip so STORE=memory is usable without a database.
func demoStore(log *slog.Logger) *store.Memory {
	m := store.NewMemory()
	m.AddTrip(seats.Trip{ID: "trip-colombo-kandy", Origin: "Colombo", Destination: "Kandy", PriceCents: 50000})
	if err := m.AddSchedule("schedule-1", "trip-colombo-kandy"); err != nil {
		fatal(log, "seed_failed", err)
	}
	log.Info("memory_store_seeded", "schedule_id", "schedule-1")
	return m
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
