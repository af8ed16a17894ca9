package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-seat-reservations/internal/audit"
	"github.com/ariefcatur/go-seat-reservations/internal/config"
	"github.com/ariefcatur/go-seat-reservations/internal/events"
	kafkax "github.com/ariefcatur/go-seat-reservations/internal/kafka"
	"github.com/ariefcatur/go-seat-reservations/internal/logx"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
	"github.com/ariefcatur/go-seat-reservations/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logx.New(cfg.ServiceName + "-audit")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db_connect_failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db_migrate_failed", "err", err)
		os.Exit(1)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{Repo: &audit.Repo{DB: db}, Redis: rdb, Log: log}
	topics := events.AllTopics()
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, topics, cfg.AuditWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("audit_consumer_started", "group", cfg.AuditGroup, "topics", topics, "workers", cfg.AuditWorkers)
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error("consumer_exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting_down")
	cancel()
	<-done
}
