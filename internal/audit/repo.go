package audit

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/ariefcatur/go-seat-reservations/internal/postgres"
)

type Repo struct{ DB postgres.DBTX }

// Record appends env to payment_events. inserted is false when the event id
// was already stored.
func (r *Repo) Record(ctx context.Context, env events.Envelope) (inserted bool, err error) {
	payload := string(env.Payload)
	if payload == "" {
		payload = "{}"
	}
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO payment_events(event_id, event_type, order_id, producer, occurred_at, payload)
		VALUES ($1,$2,$3,$4,$5,$6::jsonb)
		ON CONFLICT (event_id) DO NOTHING`,
		env.EventID, env.EventType, env.CorrelationID, env.Producer, env.OccurredAt, payload,
	)
	if err != nil {
		return false, fmt.Errorf("record event %s: %w", env.EventID, err)
	}
	return tag.RowsAffected() == 1, nil
}
