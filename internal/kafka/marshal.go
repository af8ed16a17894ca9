package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-seat-reservations/internal/events"
	"github.com/segmentio/kafka-go"
)

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// DecodeEnvelope reads the envelope of a consumed message.
func DecodeEnvelope(m kafka.Message) (events.Envelope, error) {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return env, fmt.Errorf("decode envelope (topic=%s offset=%d): %w", m.Topic, m.Offset, err)
	}
	if env.EventID == "" || env.EventType == "" {
		return env, fmt.Errorf("envelope without id/type (topic=%s offset=%d)", m.Topic, m.Offset)
	}
	return env, nil
}

// UnwrapPayload decodes an envelope payload into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
