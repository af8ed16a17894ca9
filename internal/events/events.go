package events

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentInitialized = "PaymentInitialized"
	EventPaymentCompleted   = "PaymentCompleted"
	EventPaymentFailed      = "PaymentFailed"
	EventPaymentCancelled   = "PaymentCancelled"
	EventSeatsCommitted     = "SeatsCommitted"
	EventSeatConflict       = "SeatConflict"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type PaymentInitializedPayload struct {
	OrderID     string   `json:"order_id"`
	ScheduleID  string   `json:"schedule_id"`
	SeatIDs     []string `json:"seat_ids"`
	AmountCents int64    `json:"amount_cents"`
	Currency    string   `json:"currency"`
}

type PaymentStatusPayload struct {
	OrderID          string `json:"order_id"`
	ScheduleID       string `json:"schedule_id"`
	Status           string `json:"status"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	StatusCode       string `json:"status_code,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

type SeatsCommittedPayload struct {
	OrderID     string   `json:"order_id"`
	ScheduleID  string   `json:"schedule_id"`
	SeatIDs     []string `json:"seat_ids"`
	BookedSeats []string `json:"booked_seats"`
}

type SeatConflictPayload struct {
	OrderID     string   `json:"order_id"`
	ScheduleID  string   `json:"schedule_id"`
	Conflicting []string `json:"conflicting"`
}
