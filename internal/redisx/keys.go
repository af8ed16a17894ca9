package redisx

import "time"

const (
	// payment_status:{order_id} -> JSON status view
	KeyPaymentStatus = "payment_status:%s"

	// booked_seats:{schedule_id} -> JSON array of seat ids
	KeyBookedSeats = "booked_seats:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLSeatsCache  = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
