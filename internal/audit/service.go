// Package audit consumes payment lifecycle events and appends them to the
// payment_events table.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/go-seat-reservations/internal/events"
	kafkax "github.com/ariefcatur/go-seat-reservations/internal/kafka"
	"github.com/ariefcatur/go-seat-reservations/internal/metrics"
	"github.com/ariefcatur/go-seat-reservations/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type recorder interface {
	Record(ctx context.Context, env events.Envelope) (bool, error)
}

type Service struct {
	Repo  recorder
	Redis redis.Cmdable
	Log   *slog.Logger
}

// HandleEvent is installed as the consumer handler.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	env, err := kafkax.DecodeEnvelope(m)
	if err != nil {
		// redelivery cannot fix a bad message
		log.Error("audit_poison_message", "topic", m.Topic, "offset", m.Offset, "err", err)
		metrics.IncAudit("unknown", "poison")
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "audit", env.EventID)
	if s.Redis != nil {
		claimed, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
		switch {
		case err != nil:
			log.Warn("audit_dedup_unavailable", "event_id", env.EventID, "err", err)
		case !claimed:
			metrics.IncAudit(env.EventType, "duplicate")
			return nil
		}
	}

	inserted, err := s.Repo.Record(ctx, env)
	if err != nil {
		if s.Redis != nil {
			_ = redisx.Release(ctx, s.Redis, dkey)
		}
		metrics.IncAudit(env.EventType, "error")
		return err
	}
	if !inserted {
		metrics.IncAudit(env.EventType, "duplicate")
		return nil
	}
	metrics.IncAudit(env.EventType, "recorded")
	log.Info("audit_recorded", "event_id", env.EventID, "event_type", env.EventType,
		"order_id", env.CorrelationID, "trace_id", env.TraceID)
	return nil
}
