package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers ...kafka.Header) bool
}

// Emitter wraps domain payloads in a v1 Envelope and publishes them keyed by order id.
type Emitter struct {
	Producer publisher
	Service  string
}

func (e *Emitter) Emit(ctx context.Context, eventType, orderID string, payload any) {
	topic, ok := events.TopicFor(eventType)
	if !ok {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       MustMarshal(payload),
	}
	e.Producer.Publish(ctx, topic, events.PartitionKey(orderID), MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
